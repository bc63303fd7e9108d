// Package journal stores each account's expenses as a CSV file with a
// Date,Description,Category,Amount header.
//
// Every mutation rewrites the whole file atomically.
package journal

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
)

type Journal struct {
	store    *filex.Store
	accounts models.AccountResolver
}

func New(store *filex.Store, accounts models.AccountResolver) *Journal {
	return &Journal{store: store, accounts: accounts}
}

// Load returns the account's entries in file order. An unknown account or a
// missing or corrupt file yields an empty slice.
func (j *Journal) Load(ctx context.Context, username string) ([]models.JournalEntry, filex.ReadResult) {
	acc, err := j.accounts.Lookup(ctx, username)
	if err != nil {
		return []models.JournalEntry{}, filex.Missing()
	}
	return j.load(ctx, acc)
}

func (j *Journal) load(ctx context.Context, acc models.Account) ([]models.JournalEntry, filex.ReadResult) {
	var entries []models.JournalEntry
	res := j.store.ReadFile(ctx, j.accounts.Path(acc.JournalFile), func(r io.Reader) error {
		var err error
		entries, err = Decode(r)
		return err
	})
	if !res.OK() {
		return []models.JournalEntry{}, res
	}
	return entries, res
}

// Append adds entry at the end of the journal. A corrupt journal is never
// appended to, since rewriting it would drop the rows that failed to parse.
func (j *Journal) Append(ctx context.Context, username string, entry models.JournalEntry) error {
	acc, err := j.accounts.Lookup(ctx, username)
	if err != nil {
		return err
	}

	entries, res := j.load(ctx, acc)
	if res.Status == filex.StatusCorrupt {
		return fmt.Errorf("append to %s: %w", acc.JournalFile, res.Err)
	}
	return j.save(ctx, acc, append(entries, entry))
}

// Save replaces the journal with entries.
func (j *Journal) Save(ctx context.Context, username string, entries []models.JournalEntry) error {
	acc, err := j.accounts.Lookup(ctx, username)
	if err != nil {
		return err
	}
	return j.save(ctx, acc, entries)
}

// Clear leaves only the header.
func (j *Journal) Clear(ctx context.Context, username string) error {
	return j.Save(ctx, username, nil)
}

func (j *Journal) save(ctx context.Context, acc models.Account, entries []models.JournalEntry) error {
	return j.store.WriteFile(ctx, j.accounts.Path(acc.JournalFile), func(w io.Writer) error {
		return Encode(w, entries)
	})
}
