package registry

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/dmitrijs2005/spendkeeper/internal/models"
)

const schemaFile = "schema.json"

// SchemaVersion is the version Open migrates a data directory to.
const SchemaVersion = 2

type schemaMarker struct {
	Version int `json:"version"`
}

type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, r *Registry, accounts map[string]models.Account) (changed bool, err error)
}

var migrations = []migration{
	{1, "balance file references", fillFileRefs},
	{2, "heal account files", healAll},
}

func (r *Registry) schemaPath() string { return filepath.Join(r.dataDir, schemaFile) }

// Version returns the schema version recorded in the data directory, 0 when
// there is none.
func (r *Registry) Version(ctx context.Context) int {
	var m schemaMarker
	if res := r.store.ReadJSON(ctx, r.schemaPath(), &m); !res.OK() {
		return 0
	}
	return m.Version
}

// migrate runs every migration newer than the recorded schema version, then
// records SchemaVersion. An up-to-date directory is not written to. A failed
// migration is logged and leaves the marker alone, so the next Open retries.
func (r *Registry) migrate(ctx context.Context) error {
	from := r.Version(ctx)
	if from >= SchemaVersion {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.loadStoredForUpdate(ctx)
	if err != nil {
		r.logger.Error(ctx, "migration skipped, registry unreadable", "err", err)
		return nil
	}

	changed, failed := false, false
	for _, m := range migrations {
		if m.version <= from {
			continue
		}
		c, err := m.apply(ctx, r, accounts)
		changed = changed || c
		if err != nil {
			r.logger.Error(ctx, "migration failed", "version", m.version, "name", m.name, "err", err)
			failed = true
			break
		}
		r.logger.Info(ctx, "migration applied", "version", m.version, "name", m.name, "changed", c)
	}

	if changed {
		if err := r.save(ctx, accounts); err != nil {
			return err
		}
	}
	if failed {
		return nil
	}
	return r.store.WriteJSON(ctx, r.schemaPath(), schemaMarker{Version: SchemaVersion})
}

// withFileRefs fills the file references acc lacks with the names derived
// from username and reports whether it changed anything.
func withFileRefs(username string, acc models.Account) (models.Account, bool) {
	derived := models.NewAccount(username, acc.PasswordHash)
	changed := false
	if acc.JournalFile == "" {
		acc.JournalFile = derived.JournalFile
		changed = true
	}
	if acc.CategoriesFile == "" {
		acc.CategoriesFile = derived.CategoriesFile
		changed = true
	}
	if acc.BalanceFile == "" {
		acc.BalanceFile = derived.BalanceFile
		changed = true
	}
	return acc, changed
}

// fillFileRefs gives every account lacking a file reference its derived name.
func fillFileRefs(_ context.Context, _ *Registry, accounts map[string]models.Account) (bool, error) {
	changed := false
	for name, acc := range accounts {
		filled, c := withFileRefs(name, acc)
		accounts[name] = filled
		changed = changed || c
	}
	return changed, nil
}

func healAll(ctx context.Context, r *Registry, accounts map[string]models.Account) (bool, error) {
	_, err := r.healAccounts(ctx, accounts)
	return false, err
}

// Heal recreates missing files of every account and returns how many files
// it created.
func (r *Registry) Heal(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts, err := r.loadStoredForUpdate(ctx)
	if err != nil {
		return 0, err
	}
	if changed, _ := fillFileRefs(ctx, r, accounts); changed {
		if err := r.save(ctx, accounts); err != nil {
			return 0, err
		}
	}
	return r.healAccounts(ctx, accounts)
}

func (r *Registry) healAccounts(ctx context.Context, accounts map[string]models.Account) (int, error) {
	created := 0
	var errs []error
	for name, acc := range accounts {
		for _, f := range []struct {
			file   string
			create func(context.Context, models.Account) error
		}{
			{acc.JournalFile, r.createJournal},
			{acc.CategoriesFile, r.createCategories},
			{acc.BalanceFile, r.createBalance},
		} {
			if f.file == "" || r.store.Exists(r.Path(f.file)) {
				continue
			}
			if err := f.create(ctx, acc); err != nil {
				errs = append(errs, err)
				continue
			}
			r.logger.Info(ctx, "account file recreated", "username", name, "file", f.file)
			created++
		}
	}
	return created, errors.Join(errs...)
}
