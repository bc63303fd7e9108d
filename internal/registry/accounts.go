package registry

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/spendkeeper/internal/categories"
	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/cryptox"
	"github.com/dmitrijs2005/spendkeeper/internal/journal"
	"github.com/dmitrijs2005/spendkeeper/internal/ledger"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/shopspring/decimal"
)

// ValidateUsername checks that username can be embedded in a file name.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	case strings.HasPrefix(username, "."):
		return fmt.Errorf("%w: username must not start with a dot", common.ErrValidation)
	case strings.Contains(username, ".."):
		return fmt.Errorf("%w: username must not contain \"..\"", common.ErrValidation)
	case strings.ContainsAny(username, `/\:`):
		return fmt.Errorf("%w: username must not contain path separators", common.ErrValidation)
	case strings.IndexFunc(username, unicode.IsControl) >= 0:
		return fmt.Errorf("%w: username must not contain control characters", common.ErrValidation)
	}
	return nil
}

// Create registers a new account and writes its initial files: an empty
// journal, the default category rules and a zero balance. Files written
// before a failure are left in place.
func (r *Registry) Create(ctx context.Context, username, password string) (models.Account, error) {
	if err := ValidateUsername(username); err != nil {
		return models.Account{}, err
	}
	if password == "" {
		return models.Account{}, fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.loadForUpdate(ctx)
	if err != nil {
		r.logger.Error(ctx, "create refused", "username", username, "err", err)
		return models.Account{}, err
	}
	if _, ok := accounts[username]; ok {
		return models.Account{}, fmt.Errorf("account %q: %w", username, common.ErrAlreadyExists)
	}

	acc := models.NewAccount(username, cryptox.HashPassword([]byte(password)))

	for _, create := range []func(context.Context, models.Account) error{
		r.createJournal, r.createCategories, r.createBalance,
	} {
		if err := create(ctx, acc); err != nil {
			r.logger.Error(ctx, "create failed", "username", username, "err", err)
			return models.Account{}, err
		}
	}

	accounts[username] = acc
	if err := r.save(ctx, accounts); err != nil {
		r.logger.Error(ctx, "create failed", "username", username, "err", err)
		return models.Account{}, err
	}

	r.logger.Info(ctx, "account created", "username", username)
	return acc, nil
}

func (r *Registry) createJournal(ctx context.Context, acc models.Account) error {
	return r.store.WriteFile(ctx, r.Path(acc.JournalFile), func(w io.Writer) error {
		return journal.Encode(w, nil)
	})
}

func (r *Registry) createCategories(ctx context.Context, acc models.Account) error {
	return r.store.WriteJSON(ctx, r.Path(acc.CategoriesFile), categories.Defaults())
}

func (r *Registry) createBalance(ctx context.Context, acc models.Account) error {
	return r.store.WriteFile(ctx, r.Path(acc.BalanceFile), func(w io.Writer) error {
		return ledger.Encode(w, decimal.Zero)
	})
}

// Authenticate returns nil iff username exists and password matches its
// hash. A matching legacy digest is upgraded to the current hash format.
func (r *Registry) Authenticate(ctx context.Context, username, password string) error {
	acc, err := r.Lookup(ctx, username)
	if err != nil {
		r.logger.Info(ctx, "login failed", "username", username, "reason", "unknown user")
		return common.ErrUnauthorized
	}
	if !cryptox.VerifyPassword(acc.PasswordHash, []byte(password)) {
		r.logger.Info(ctx, "login failed", "username", username, "reason", "wrong password")
		return common.ErrUnauthorized
	}

	if cryptox.IsLegacy(acc.PasswordHash) {
		r.rehash(ctx, username, password)
	}
	return nil
}

func (r *Registry) rehash(ctx context.Context, username, password string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.loadForUpdate(ctx)
	if err != nil {
		return
	}
	acc, ok := accounts[username]
	if !ok {
		return
	}
	acc.PasswordHash = cryptox.HashPassword([]byte(password))
	accounts[username] = acc
	if err := r.save(ctx, accounts); err != nil {
		r.logger.Warn(ctx, "password hash upgrade failed", "username", username, "err", err)
		return
	}
	r.logger.Info(ctx, "password hash upgraded", "username", username)
}

// Delete removes the account's files and its registry entry. Removal of a
// file that fails is logged and does not stop the delete.
func (r *Registry) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.loadForUpdate(ctx)
	if err != nil {
		return err
	}
	acc, ok := accounts[username]
	if !ok {
		return fmt.Errorf("account %q: %w", username, common.ErrNotFound)
	}

	paths := append(r.Files(acc), r.Path(models.PendingFileName(username)))
	for _, p := range paths {
		if err := r.store.Remove(ctx, p); err != nil {
			r.logger.Warn(ctx, "account file not removed", "username", username, "path", p, "err", err)
		}
	}

	delete(accounts, username)
	if err := r.save(ctx, accounts); err != nil {
		return err
	}

	r.logger.Info(ctx, "account deleted", "username", username)
	return nil
}
