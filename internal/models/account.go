package models

import (
	"context"
	"fmt"
)

// Account is one registry record. Username is the registry key and is not
// serialized inside the record itself.
type Account struct {
	Username       string `json:"-"`
	PasswordHash   string `json:"password_hash"`
	JournalFile    string `json:"data_file"`
	CategoriesFile string `json:"categories_file"`
	BalanceFile    string `json:"balance_file,omitempty"`
}

// NewAccount returns an account with the deterministic file names derived
// from username.
func NewAccount(username, passwordHash string) Account {
	return Account{
		Username:       username,
		PasswordHash:   passwordHash,
		JournalFile:    JournalFileName(username),
		CategoriesFile: CategoriesFileName(username),
		BalanceFile:    BalanceFileName(username),
	}
}

func JournalFileName(username string) string {
	return fmt.Sprintf("user_%s_data.csv", username)
}

func CategoriesFileName(username string) string {
	return fmt.Sprintf("user_%s_categories.json", username)
}

func BalanceFileName(username string) string {
	return fmt.Sprintf("user_%s_balance.json", username)
}

// PendingFileName names the file holding an in-flight expense intent.
func PendingFileName(username string) string {
	return fmt.Sprintf("user_%s_pending.json", username)
}

// AccountResolver maps a username to its registry record and a stored file
// name to a path. The registry implements it for the per-account stores.
type AccountResolver interface {
	Lookup(ctx context.Context, username string) (Account, error)
	Path(file string) string
}
