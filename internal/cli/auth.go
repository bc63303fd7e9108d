package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/spendkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Register prompts for a username and a password typed twice, then creates
// the account. It does not log the new user in.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if _, err := a.tracker.SignUp(ctx, userName, string(password), string(confirm)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created! Please login.")
	return nil
}

// Login authenticates and makes the user current. An expense interrupted
// in an earlier session is settled as part of it.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.tracker.Login(ctx, userName, string(password)); err != nil {
		return err
	}

	a.userName = userName
	fmt.Fprintf(a.out, "Welcome, %s!\n", userName)
	return a.Balance(ctx)
}

// Logout only ends the session; no data is touched.
func (a *App) Logout(_ context.Context) error {
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// loginAs authenticates userName with a prompted password. Subcommands use
// it, taking the username from a flag.
func (a *App) loginAs(ctx context.Context, userName string) error {
	userName = strings.TrimSpace(userName)
	password, err := getPassword(a.reader, "Password for "+userName, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.tracker.Login(ctx, userName, string(password)); err != nil {
		return err
	}
	a.userName = userName
	return nil
}
