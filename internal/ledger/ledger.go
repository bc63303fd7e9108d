// Package ledger stores one decimal balance per account.
//
// The balance lives in its own file, independent of the expense journal,
// and is only ever changed by a signed delta or by an absolute reset.
package ledger

import (
	"context"
	"encoding/json"
	"io"

	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/shopspring/decimal"
)

type Ledger struct {
	store    *filex.Store
	accounts models.AccountResolver
}

func New(store *filex.Store, accounts models.AccountResolver) *Ledger {
	return &Ledger{store: store, accounts: accounts}
}

// Encode writes {"balance": <number>} with the balance as a bare JSON number.
func Encode(w io.Writer, balance decimal.Decimal) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(struct {
		Balance json.Number `json:"balance"`
	}{json.Number(balance.String())})
}

// Decode reads a balance file. The value may be a number or a quoted decimal
// string; a missing key reads as zero.
func Decode(r io.Reader) (decimal.Decimal, error) {
	var rec struct {
		Balance decimal.NullDecimal `json:"balance"`
	}
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return decimal.Zero, err
	}
	if !rec.Balance.Valid {
		return decimal.Zero, nil
	}
	return rec.Balance.Decimal, nil
}

// Get returns the persisted balance. An unknown account or a missing or
// unreadable file reads as zero; the result says which.
func (l *Ledger) Get(ctx context.Context, username string) (decimal.Decimal, filex.ReadResult) {
	acc, err := l.accounts.Lookup(ctx, username)
	if err != nil {
		return decimal.Zero, filex.Missing()
	}

	balance := decimal.Zero
	res := l.store.ReadFile(ctx, l.accounts.Path(acc.BalanceFile), func(r io.Reader) error {
		var err error
		balance, err = Decode(r)
		return err
	})
	if !res.OK() {
		return decimal.Zero, res
	}
	return balance, res
}

// ApplyDelta adds delta to the stored balance and returns the new value.
func (l *Ledger) ApplyDelta(ctx context.Context, username string, delta decimal.Decimal) (decimal.Decimal, error) {
	acc, err := l.accounts.Lookup(ctx, username)
	if err != nil {
		return decimal.Zero, err
	}

	current, _ := l.Get(ctx, username)
	next := current.Add(delta)
	if err := l.write(ctx, acc, next); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

// Set overwrites the stored balance with value.
func (l *Ledger) Set(ctx context.Context, username string, value decimal.Decimal) error {
	acc, err := l.accounts.Lookup(ctx, username)
	if err != nil {
		return err
	}
	return l.write(ctx, acc, value)
}

func (l *Ledger) write(ctx context.Context, acc models.Account, value decimal.Decimal) error {
	return l.store.WriteFile(ctx, l.accounts.Path(acc.BalanceFile), func(w io.Writer) error {
		return Encode(w, value)
	})
}
