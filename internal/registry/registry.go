// Package registry keeps the username → account mapping and owns the
// lifecycle of every account's files.
//
// The registry is a single JSON object rewritten in full on every change.
// Account data files live in the users subdirectory of the data directory.
package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
)

const (
	registryFile = "users.json"
	usersDir     = "users"
)

type Registry struct {
	store    *filex.Store
	logger   logging.Logger
	dataDir  string
	usersDir string

	// mu serializes read-modify-write cycles of the registry file.
	mu sync.Mutex
}

// Open prepares dataDir for use: it creates the directories and an empty
// registry when needed, removes temporary files left by interrupted writes
// and runs pending schema migrations.
func Open(ctx context.Context, store *filex.Store, dataDir string, logger logging.Logger) (*Registry, error) {
	r := &Registry{
		store:    store,
		logger:   logger.With("component", "registry"),
		dataDir:  dataDir,
		usersDir: filepath.Join(dataDir, usersDir),
	}

	if err := filex.EnsureDir(r.usersDir); err != nil {
		return nil, err
	}
	for _, dir := range []string{r.dataDir, r.usersDir} {
		if _, err := store.SweepTemp(ctx, dir); err != nil {
			r.logger.Warn(ctx, "temporary files not swept", "dir", dir, "err", err)
		}
	}

	if !store.Exists(r.registryPath()) {
		if err := r.save(ctx, map[string]models.Account{}); err != nil {
			return nil, err
		}
	}

	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) registryPath() string { return filepath.Join(r.dataDir, registryFile) }

// DataDir returns the directory holding the registry.
func (r *Registry) DataDir() string { return r.dataDir }

// Path resolves an account file name to its location on disk. An empty name
// has no location and resolves to "", which the store refuses to write.
func (r *Registry) Path(file string) string {
	if file == "" {
		return ""
	}
	return filepath.Join(r.usersDir, file)
}

// Files returns the paths of the account's data files. References missing
// from the record are skipped.
func (r *Registry) Files(acc models.Account) []string {
	var paths []string
	for _, f := range []string{acc.JournalFile, acc.CategoriesFile, acc.BalanceFile} {
		if f != "" {
			paths = append(paths, r.Path(f))
		}
	}
	return paths
}

// Load returns every account. A missing or corrupt registry reads as empty.
// File references absent from a record are filled with their derived names
// in memory; the registry file is not rewritten.
func (r *Registry) Load(ctx context.Context) (map[string]models.Account, filex.ReadResult) {
	accounts, res := r.loadStored(ctx)
	for name, acc := range accounts {
		accounts[name], _ = withFileRefs(name, acc)
	}
	return accounts, res
}

// loadStored returns the records as they are on disk.
func (r *Registry) loadStored(ctx context.Context) (map[string]models.Account, filex.ReadResult) {
	accounts := map[string]models.Account{}
	res := r.store.ReadJSON(ctx, r.registryPath(), &accounts)
	if !res.OK() || accounts == nil {
		return map[string]models.Account{}, res
	}
	for name, acc := range accounts {
		acc.Username = name
		accounts[name] = acc
	}
	return accounts, res
}

// Lookup returns the account registered under username.
func (r *Registry) Lookup(ctx context.Context, username string) (models.Account, error) {
	accounts, _ := r.Load(ctx)
	acc, ok := accounts[username]
	if !ok {
		return models.Account{}, fmt.Errorf("account %q: %w", username, common.ErrNotFound)
	}
	return acc, nil
}

// loadForUpdate is Load for callers about to rewrite the registry. A corrupt
// registry is refused so that a rewrite cannot drop accounts.
func (r *Registry) loadForUpdate(ctx context.Context) (map[string]models.Account, error) {
	accounts, res := r.Load(ctx)
	if res.Status == filex.StatusCorrupt {
		return nil, res.Err
	}
	return accounts, nil
}

// loadStoredForUpdate is loadForUpdate without the in-memory file references,
// for migrations that need to see what is missing on disk.
func (r *Registry) loadStoredForUpdate(ctx context.Context) (map[string]models.Account, error) {
	accounts, res := r.loadStored(ctx)
	if res.Status == filex.StatusCorrupt {
		return nil, res.Err
	}
	return accounts, nil
}

func (r *Registry) save(ctx context.Context, accounts map[string]models.Account) error {
	return r.store.WriteJSON(ctx, r.registryPath(), accounts)
}
