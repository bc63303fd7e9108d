package models

import "github.com/shopspring/decimal"

// JournalEntry is one expense row. Amount is the positive spent value; the
// matching balance delta is its negation.
type JournalEntry struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// Equal compares entries field by field, amounts by numeric value.
func (e JournalEntry) Equal(o JournalEntry) bool {
	return e.Date == o.Date &&
		e.Description == o.Description &&
		e.Category == o.Category &&
		e.Amount.Equal(o.Amount)
}
