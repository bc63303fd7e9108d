// Package report turns a journal into the views the UI shows: filtered
// listings, the spending dashboard, and downloadable spreadsheets.
package report

import (
	"cmp"
	"slices"

	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/shopspring/decimal"
)

// AllCategories matches every category in a Filter.
const AllCategories = "All"

var hundred = decimal.NewFromInt(100)

// Filter selects entries by inclusive date range and category. Nil bounds
// and an empty or "All" category match everything.
type Filter struct {
	From     *models.Date
	To       *models.Date
	Category string
}

func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil && (f.Category == "" || f.Category == AllCategories)
}

func (f Filter) match(e models.JournalEntry) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.Category != "" && f.Category != AllCategories && e.Category != f.Category {
		return false
	}
	return true
}

// Apply returns the matching entries in journal order.
func (f Filter) Apply(entries []models.JournalEntry) []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Total sums the entries' amounts.
func Total(entries []models.JournalEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Categories lists the distinct categories used in entries, sorted.
func Categories(entries []models.JournalEntry) []string {
	var out []string
	for _, e := range entries {
		if !slices.Contains(out, e.Category) {
			out = append(out, e.Category)
		}
	}
	slices.Sort(out)
	return out
}

type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

type DayTotal struct {
	Date   models.Date
	Amount decimal.Decimal
}

// Summary is the spending dashboard.
type Summary struct {
	Today           models.Date
	Count           int
	TotalSpent      decimal.Decimal
	Balance         decimal.Decimal
	StartingBalance decimal.Decimal

	// SpentPercent is only meaningful when HasSpentPercent is set, which
	// requires a positive starting balance.
	SpentPercent    decimal.Decimal
	HasSpentPercent bool

	// ByCategory is sorted by amount, largest first, ties by name.
	ByCategory []CategoryTotal
	// Daily covers today's month only, by date.
	Daily []DayTotal
}

// Summarize computes the dashboard for entries and the current balance.
func Summarize(entries []models.JournalEntry, balance decimal.Decimal, today models.Date) Summary {
	s := Summary{
		Today:      today,
		Count:      len(entries),
		TotalSpent: Total(entries),
		Balance:    balance,
	}
	s.StartingBalance = s.TotalSpent.Add(balance)
	if s.StartingBalance.IsPositive() {
		s.SpentPercent = s.TotalSpent.Div(s.StartingBalance).Mul(hundred)
		s.HasSpentPercent = true
	}

	byCat := map[string]decimal.Decimal{}
	byDay := map[models.Date]decimal.Decimal{}
	for _, e := range entries {
		byCat[e.Category] = byCat[e.Category].Add(e.Amount)
		if e.Date.SameMonth(today) {
			byDay[e.Date] = byDay[e.Date].Add(e.Amount)
		}
	}

	for c, amt := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: c, Amount: amt})
	}
	slices.SortFunc(s.ByCategory, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	for d, amt := range byDay {
		s.Daily = append(s.Daily, DayTotal{Date: d, Amount: amt})
	}
	slices.SortFunc(s.Daily, func(a, b DayTotal) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})

	return s
}
