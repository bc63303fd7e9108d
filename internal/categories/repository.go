package categories

import (
	"context"

	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
)

// Repository persists an account's rules as a JSON object in mapping order.
type Repository struct {
	store    *filex.Store
	accounts models.AccountResolver
}

func NewRepository(store *filex.Store, accounts models.AccountResolver) *Repository {
	return &Repository{store: store, accounts: accounts}
}

// Load returns the stored rules, or Fallback when the account is unknown or
// its file is missing or unreadable.
func (r *Repository) Load(ctx context.Context, username string) (Rules, filex.ReadResult) {
	acc, err := r.accounts.Lookup(ctx, username)
	if err != nil {
		return Fallback(), filex.Missing()
	}

	var rules Rules
	res := r.store.ReadJSON(ctx, r.accounts.Path(acc.CategoriesFile), &rules)
	if !res.OK() {
		return Fallback(), res
	}
	return rules, res
}

// Save atomically rewrites the account's rules.
func (r *Repository) Save(ctx context.Context, username string, rules Rules) error {
	acc, err := r.accounts.Lookup(ctx, username)
	if err != nil {
		return err
	}
	return r.store.WriteJSON(ctx, r.accounts.Path(acc.CategoriesFile), rules)
}
