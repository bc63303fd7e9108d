package tracker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/dmitrijs2005/spendkeeper/internal/registry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	logger := logging.NewDiscardLogger()
	store := filex.NewStore(logger)
	reg, err := registry.Open(context.Background(), store, t.TempDir(), logger)
	require.NoError(t, err)
	return New(store, reg, logger)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func signUp(t *testing.T, tr *Tracker, username string, balance string) {
	t.Helper()
	ctx := context.Background()
	_, err := tr.SignUp(ctx, username, "pw", "pw")
	require.NoError(t, err)
	if balance != "" {
		_, err = tr.Deposit(ctx, username, dec(balance))
		require.NoError(t, err)
	}
}

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	old := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = old })
}

func TestScenarioAlice(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	fixClock(t, time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	_, err := tr.SignUp(ctx, "alice", "pw", "pw")
	require.NoError(t, err)
	require.NoError(t, tr.Login(ctx, "alice", "pw"))

	s, err := tr.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, s.Balance.IsZero())

	bal, err := tr.Deposit(ctx, "alice", dec("500"))
	require.NoError(t, err)
	assert.Equal(t, "500", bal.String())

	r, err := tr.AddExpense(ctx, "alice", ExpenseInput{Description: "uber ride", Amount: dec("40")})
	require.NoError(t, err)
	assert.Equal(t, "Transport", r.Entry.Category)
	assert.Equal(t, "2024-03-15", r.Entry.Date.String())
	assert.Equal(t, "460", r.Balance.String())
	assert.False(t, r.CategoryCreated)

	s, err = tr.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "460", s.Balance.String())
	require.Len(t, s.Entries, 1)
	assert.True(t, s.Entries[0].Equal(r.Entry))

	assert.NoFileExists(t, tr.intentPath("alice"))
}

func TestAddExpense_Validation(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "100")

	tests := []struct {
		name string
		in   ExpenseInput
		want error
	}{
		{"empty description", ExpenseInput{Description: "  ", Amount: dec("1")}, common.ErrValidation},
		{"zero amount", ExpenseInput{Description: "x", Amount: decimal.Zero}, common.ErrValidation},
		{"negative amount", ExpenseInput{Description: "x", Amount: dec("-3")}, common.ErrValidation},
		{"over balance", ExpenseInput{Description: "x", Amount: dec("100.01")}, common.ErrInsufficientBalance},
		{"sentinel category", ExpenseInput{Description: "x", Category: common.NewCategorySentinel, Amount: dec("1")}, common.ErrValidation},
		{"line break in description", ExpenseInput{Description: "taxi\r\nride", Amount: dec("1")}, common.ErrValidation},
		{"tab in category", ExpenseInput{Description: "x", Category: "Food\tDrinks", Amount: dec("1")}, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.AddExpense(ctx, "alice", tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	s, err := tr.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, s.Entries)
	assert.Equal(t, "100", s.Balance.String())
}

func TestAddExpense_WholeBalance(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "25.50")

	r, err := tr.AddExpense(ctx, "alice", ExpenseInput{
		Date: models.MustParseDate("2024-01-02"), Description: "Concert", Amount: dec("25.5"),
	})
	require.NoError(t, err)
	assert.True(t, r.Balance.IsZero())
	assert.Equal(t, "Entertainment", r.Entry.Category)
}

func TestAddExpense_NewCategory(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "100")

	r, err := tr.AddExpense(ctx, "alice", ExpenseInput{Description: "Dentist", Category: "Health", Amount: dec("30")})
	require.NoError(t, err)
	assert.True(t, r.CategoryCreated)

	rules, res := tr.Rules(ctx, "alice")
	require.True(t, res.OK())
	assert.Equal(t, []string{"Food", "Transport", "Entertainment", "Bills", "Health"}, rules.Names())

	r, err = tr.AddExpense(ctx, "alice", ExpenseInput{Description: "Pharmacy", Amount: dec("5")})
	require.NoError(t, err)
	assert.Equal(t, "Other", r.Entry.Category)
	assert.True(t, r.CategoryCreated)
}

func TestAddExpense_UnknownAccount(t *testing.T) {
	tr := newTestTracker(t)
	_, err := tr.AddExpense(context.Background(), "ghost", ExpenseInput{Description: "x", Amount: dec("1")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAddExpense_CorruptJournalRefused(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "100")

	acc, err := tr.Registry().Lookup(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(tr.Registry().Path(acc.JournalFile), []byte("Date,Amount\nnope,1\n"), 0o600))

	_, err = tr.AddExpense(ctx, "alice", ExpenseInput{Description: "lunch", Amount: dec("1")})
	assert.ErrorIs(t, err, common.ErrCorruptData)

	bal, _ := tr.ledger.Get(ctx, "alice")
	assert.Equal(t, "100", bal.String())
	assert.NoFileExists(t, tr.intentPath("alice"))
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	_, err := tr.SignUp(ctx, "", "pw", "pw")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = tr.SignUp(ctx, "alice", "pw", "other")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = tr.SignUp(ctx, "alice", "pw", "pw")
	require.NoError(t, err)
	_, err = tr.SignUp(ctx, "alice", "pw", "pw")
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	assert.ErrorIs(t, tr.Login(ctx, "alice", "bad"), common.ErrUnauthorized)
}

func TestLogin_TrimsUsernameLikeSignUp(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)

	acc, err := tr.SignUp(ctx, " bob ", "pw", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bob", acc.Username)

	assert.NoError(t, tr.Login(ctx, " bob", "pw"))
	assert.NoError(t, tr.Login(ctx, "bob\n", "pw"))
}

func TestSetBalance(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "100")

	bal, err := tr.SetBalance(ctx, "alice", dec("42.42"))
	require.NoError(t, err)
	assert.Equal(t, "42.42", bal.String())

	_, err = tr.SetBalance(ctx, "alice", dec("-1"))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = tr.Deposit(ctx, "alice", decimal.Zero)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestWipeData(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "100")

	require.NoError(t, tr.AddCategory(ctx, "alice", "Health", "dentist"))
	_, err := tr.AddExpense(ctx, "alice", ExpenseInput{Description: "dentist", Amount: dec("10")})
	require.NoError(t, err)

	require.NoError(t, tr.WipeData(ctx, "alice"))

	s, err := tr.Snapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, s.Entries)
	assert.True(t, s.Balance.IsZero())
	assert.True(t, s.Rules.Has("Health"))
}

func TestCloseAccount(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "100")

	require.NoError(t, tr.CloseAccount(ctx, "alice"))

	_, err := tr.Snapshot(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
	bal, res := tr.ledger.Get(ctx, "alice")
	assert.True(t, bal.IsZero())
	assert.Equal(t, filex.StatusMissing, res.Status)

	assert.ErrorIs(t, tr.CloseAccount(ctx, "alice"), common.ErrNotFound)
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t)
	signUp(t, tr, "alice", "")

	assert.ErrorIs(t, tr.AddCategory(ctx, "alice", " ", ""), common.ErrValidation)
	assert.ErrorIs(t, tr.AddCategory(ctx, "alice", common.NewCategorySentinel, ""), common.ErrValidation)

	require.NoError(t, tr.AddCategory(ctx, "alice", "Gifts\r\n", ""))
	assert.ErrorIs(t, tr.AddCategory(ctx, "alice", "Pets\x00", ""), common.ErrValidation)
	assert.ErrorIs(t, tr.AddCategory(ctx, "alice", "Pets", "vet\nbill"), common.ErrValidation)

	require.NoError(t, tr.AddCategory(ctx, "alice", "Food", "Bakery"))
	rules, _ := tr.Rules(ctx, "alice")
	assert.Contains(t, rules.Keywords("Food"), "bakery")
	assert.True(t, rules.Has("Gifts"))
	assert.False(t, rules.Has("Pets"))
}
