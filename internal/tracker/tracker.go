// Package tracker composes the per-account stores into the operations the
// UI performs: sign-up and login, balance settings, expense entry, data wipe
// and account close.
//
// Mutating operations are serialized per account within the process and
// always start by finishing or discarding an interrupted expense.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/spendkeeper/internal/categories"
	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/journal"
	"github.com/dmitrijs2005/spendkeeper/internal/ledger"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/dmitrijs2005/spendkeeper/internal/registry"
	"github.com/shopspring/decimal"
)

// now is replaced in tests.
var now = time.Now

type Tracker struct {
	store      *filex.Store
	registry   *registry.Registry
	ledger     *ledger.Ledger
	journal    *journal.Journal
	categories *categories.Repository
	logger     logging.Logger

	muMap map[string]*sync.Mutex
	mapMu sync.Mutex
}

// New wires the per-account stores on top of reg.
func New(store *filex.Store, reg *registry.Registry, logger logging.Logger) *Tracker {
	return &Tracker{
		store:      store,
		registry:   reg,
		ledger:     ledger.New(store, reg),
		journal:    journal.New(store, reg),
		categories: categories.NewRepository(store, reg),
		logger:     logger.With("component", "tracker"),
		muMap:      make(map[string]*sync.Mutex),
	}
}

func (t *Tracker) Registry() *registry.Registry { return t.registry }

func (t *Tracker) accountLock(username string) *sync.Mutex {
	t.mapMu.Lock()
	defer t.mapMu.Unlock()

	if _, ok := t.muMap[username]; !ok {
		t.muMap[username] = &sync.Mutex{}
	}
	return t.muMap[username]
}

// SignUp creates an account after checking the form fields.
func (t *Tracker) SignUp(ctx context.Context, username, password, confirm string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Account{}, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if password != confirm {
		return models.Account{}, fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}
	return t.registry.Create(ctx, username, password)
}

// Login authenticates username and settles any interrupted expense. The
// username is trimmed as in SignUp.
func (t *Tracker) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if err := t.registry.Authenticate(ctx, username, password); err != nil {
		return err
	}

	mu := t.accountLock(username)
	mu.Lock()
	defer mu.Unlock()

	if _, err := t.recover(ctx, username); err != nil {
		t.logger.Warn(ctx, "recovery at login failed", "username", username, "err", err)
	}
	t.logger.Info(ctx, "login", "username", username)
	return nil
}

// Deposit adds a positive amount to the balance and returns the new balance.
func (t *Tracker) Deposit(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}

	var balance decimal.Decimal
	err := t.mutate(ctx, username, func() error {
		var err error
		balance, err = t.ledger.ApplyDelta(ctx, username, amount)
		return err
	})
	return balance, err
}

// SetBalance moves the balance to target by applying the difference.
func (t *Tracker) SetBalance(ctx context.Context, username string, target decimal.Decimal) (decimal.Decimal, error) {
	if target.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: balance must not be negative", common.ErrValidation)
	}

	var balance decimal.Decimal
	err := t.mutate(ctx, username, func() error {
		current, _ := t.ledger.Get(ctx, username)
		var err error
		balance, err = t.ledger.ApplyDelta(ctx, username, target.Sub(current))
		return err
	})
	return balance, err
}

// WipeData empties the journal and resets the balance to zero. Category
// rules are kept.
func (t *Tracker) WipeData(ctx context.Context, username string) error {
	return t.mutate(ctx, username, func() error {
		if err := t.journal.Clear(ctx, username); err != nil {
			return err
		}
		if err := t.ledger.Set(ctx, username, decimal.Zero); err != nil {
			return err
		}
		t.logger.Info(ctx, "data wiped", "username", username)
		return nil
	})
}

// CloseAccount deletes the account and all of its files.
func (t *Tracker) CloseAccount(ctx context.Context, username string) error {
	mu := t.accountLock(username)
	mu.Lock()
	defer mu.Unlock()

	return t.registry.Delete(ctx, username)
}

// Snapshot is everything the UI shows for one account.
type Snapshot struct {
	Balance       decimal.Decimal
	BalanceResult filex.ReadResult
	Entries       []models.JournalEntry
	JournalResult filex.ReadResult
	Rules         categories.Rules
	RulesResult   filex.ReadResult
}

func (t *Tracker) Snapshot(ctx context.Context, username string) (Snapshot, error) {
	if _, err := t.registry.Lookup(ctx, username); err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	s.Balance, s.BalanceResult = t.ledger.Get(ctx, username)
	s.Entries, s.JournalResult = t.journal.Load(ctx, username)
	s.Rules, s.RulesResult = t.categories.Load(ctx, username)
	return s, nil
}

// Rules returns the account's category rules.
func (t *Tracker) Rules(ctx context.Context, username string) (categories.Rules, filex.ReadResult) {
	return t.categories.Load(ctx, username)
}

// AddCategory adds an empty category, and keyword when it is not empty.
func (t *Tracker) AddCategory(ctx context.Context, username, name, keyword string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == common.NewCategorySentinel {
		return fmt.Errorf("%w: invalid category name", common.ErrValidation)
	}
	if err := checkText("category", name); err != nil {
		return err
	}
	if err := checkText("keyword", keyword); err != nil {
		return err
	}

	return t.mutate(ctx, username, func() error {
		rules, _ := t.categories.Load(ctx, username)
		changed := categories.AddCategory(&rules, name)
		if keyword != "" {
			changed = categories.AddKeyword(&rules, name, keyword) || changed
		}
		if !changed {
			return nil
		}
		return t.categories.Save(ctx, username, rules)
	})
}

// mutate runs fn under the account lock after recovery.
func (t *Tracker) mutate(ctx context.Context, username string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mu := t.accountLock(username)
	mu.Lock()
	defer mu.Unlock()

	if _, err := t.registry.Lookup(ctx, username); err != nil {
		return err
	}
	if _, err := t.recover(ctx, username); err != nil {
		return err
	}
	return fn()
}
