package tracker

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/spendkeeper/internal/categories"
	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseInput is the expense form. A zero Date means today and an empty
// Category means the suggested one.
type ExpenseInput struct {
	Date        models.Date
	Description string
	Category    string
	Amount      decimal.Decimal
}

// Receipt describes a recorded expense.
type Receipt struct {
	Entry           models.JournalEntry
	Balance         decimal.Decimal
	CategoryCreated bool
}

// AddExpense records an expense and debits the balance.
//
// The journal row is written first and the balance second, with an intent
// file around the pair so that Recover can finish or discard the operation
// if the process dies in between.
func (t *Tracker) AddExpense(ctx context.Context, username string, in ExpenseInput) (Receipt, error) {
	var receipt Receipt
	err := t.mutate(ctx, username, func() error {
		var err error
		receipt, err = t.addExpense(ctx, username, in)
		return err
	})
	return receipt, err
}

// checkText refuses control characters. The journal CSV does not keep them
// byte for byte (a quoted "\r\n" reads back as "\n"), and recovery compares
// the stored row with the intent.
func checkText(field, s string) error {
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: %s must not contain control characters", common.ErrValidation, field)
	}
	return nil
}

func (t *Tracker) addExpense(ctx context.Context, username string, in ExpenseInput) (Receipt, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return Receipt{}, fmt.Errorf("%w: description is required", common.ErrValidation)
	}
	if err := checkText("description", description); err != nil {
		return Receipt{}, err
	}
	if !in.Amount.IsPositive() {
		return Receipt{}, fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}

	balance, _ := t.ledger.Get(ctx, username)
	if in.Amount.GreaterThan(balance) {
		return Receipt{}, fmt.Errorf("%w: expense of %s exceeds balance of %s",
			common.ErrInsufficientBalance, in.Amount, balance)
	}

	rules, _ := t.categories.Load(ctx, username)
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = categories.Suggest(description, rules)
	}
	if category == common.NewCategorySentinel {
		return Receipt{}, fmt.Errorf("%w: please enter a valid category name", common.ErrValidation)
	}
	if err := checkText("category", category); err != nil {
		return Receipt{}, err
	}

	entries, res := t.journal.Load(ctx, username)
	if res.Status == filex.StatusCorrupt {
		return Receipt{}, res.Err
	}

	date := in.Date
	if date.IsZero() {
		date = models.DateOf(now())
	}
	entry := models.JournalEntry{
		Date:        date,
		Description: description,
		Category:    category,
		Amount:      in.Amount,
	}

	created := categories.AddCategory(&rules, category)
	if created {
		if err := t.categories.Save(ctx, username, rules); err != nil {
			return Receipt{}, err
		}
		t.logger.Info(ctx, "category created", "username", username, "category", category)
	}

	intent := Intent{
		ID:            uuid.NewString(),
		Entry:         entry,
		JournalLen:    len(entries),
		BalanceBefore: balance,
		Delta:         in.Amount.Neg(),
		CreatedAt:     now().UTC(),
	}
	if err := t.writeIntent(ctx, username, intent); err != nil {
		return Receipt{}, err
	}

	if err := t.journal.Append(ctx, username, entry); err != nil {
		t.discardIntent(ctx, username)
		return Receipt{}, err
	}

	next, err := t.ledger.ApplyDelta(ctx, username, intent.Delta)
	if err != nil {
		t.logger.Error(ctx, "balance not updated, expense left pending",
			"username", username, "intent", intent.ID, "err", err)
		return Receipt{}, err
	}

	t.discardIntent(ctx, username)
	t.logger.Info(ctx, "expense added", "username", username, "intent", intent.ID,
		"category", category, "amount", in.Amount.String())

	return Receipt{Entry: entry, Balance: next, CategoryCreated: created}, nil
}
