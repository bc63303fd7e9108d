package cli

import (
	"context"
	"fmt"
)

// Wipe clears the journal and zeroes the balance after confirmation.
// Categories stay.
func (a *App) Wipe(ctx context.Context) error {
	ok, err := Confirm(a.reader, "Delete all your expenses and reset the balance? This cannot be undone.", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.tracker.WipeData(ctx, a.userName); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All data wiped.")
	return nil
}

// Close deletes the account and its files, then logs out.
func (a *App) Close(ctx context.Context) error {
	ok, err := Confirm(a.reader, fmt.Sprintf("Permanently delete account %q and all its data?", a.userName), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.tracker.CloseAccount(ctx, a.userName); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}

// Backup uploads the current user's files to the configured bucket.
func (a *App) Backup(ctx context.Context) error {
	keys, err := a.backup.Backup(ctx, a.userName)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintf(a.out, "  uploaded %s\n", k)
	}
	fmt.Fprintf(a.out, "Backup complete: %d files.\n", len(keys))
	return nil
}
