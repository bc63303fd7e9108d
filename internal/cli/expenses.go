package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/spendkeeper/internal/categories"
	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/dmitrijs2005/spendkeeper/internal/report"
	"github.com/dmitrijs2005/spendkeeper/internal/tracker"
	"github.com/shopspring/decimal"
)

func (a *App) Balance(ctx context.Context) error {
	s, err := a.tracker.Snapshot(ctx, a.userName)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Current Balance: %s\n", a.money(s.Balance))
	if s.Balance.IsZero() {
		fmt.Fprintln(a.out, "Tip: set your starting balance with setbalance or deposit.")
	}
	return nil
}

func (a *App) readAmount(prompt string) (decimal.Decimal, error) {
	s, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not an amount", common.ErrValidation, s)
	}
	return d, nil
}

func (a *App) Deposit(ctx context.Context) error {
	amount, err := a.readAmount(fmt.Sprintf("Amount to add (%s)", a.config.Currency))
	if err != nil {
		return err
	}
	balance, err := a.tracker.Deposit(ctx, a.userName, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance updated successfully! Current Balance: %s\n", a.money(balance))
	return nil
}

func (a *App) SetBalance(ctx context.Context) error {
	amount, err := a.readAmount(fmt.Sprintf("New balance (%s)", a.config.Currency))
	if err != nil {
		return err
	}
	balance, err := a.tracker.SetBalance(ctx, a.userName, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance updated successfully! Current Balance: %s\n", a.money(balance))
	return nil
}

// AddExpense walks through the expense form. The category prompt offers the
// suggestion for the description; it accepts a name, a number from the
// list, or "new" to create one.
func (a *App) AddExpense(ctx context.Context) error {
	dateStr, err := GetTextDefault(a.reader, "Date", models.Today().String(), a.out)
	if err != nil {
		return err
	}
	date, err := models.ParseDate(dateStr)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	description, err := getSimpleText(a.reader, "Description", a.out)
	if err != nil {
		return err
	}

	amount, err := a.readAmount(fmt.Sprintf("Amount (%s)", a.config.Currency))
	if err != nil {
		return err
	}

	rules, _ := a.tracker.Rules(ctx, a.userName)
	category, err := a.chooseCategory(rules, categories.Suggest(description, rules))
	if err != nil {
		return err
	}

	r, err := a.tracker.AddExpense(ctx, a.userName, tracker.ExpenseInput{
		Date:        date,
		Description: description,
		Category:    category,
		Amount:      amount,
	})
	if err != nil {
		return err
	}

	if r.CategoryCreated {
		fmt.Fprintf(a.out, "Category %q added.\n", r.Entry.Category)
	}
	fmt.Fprintf(a.out, "Expense added successfully! Current Balance: %s\n", a.money(r.Balance))
	return nil
}

func (a *App) chooseCategory(rules categories.Rules, suggested string) (string, error) {
	var options []string
	for _, n := range rules.Names() {
		if n != common.DefaultCategory {
			options = append(options, n)
		}
	}
	options = append(options, common.NewCategorySentinel)

	for i, o := range options {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, o)
	}
	choice, err := GetTextDefault(a.reader, "Category", suggested, a.out)
	if err != nil {
		return "", err
	}

	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(options) {
		choice = options[n-1]
	}
	if strings.EqualFold(choice, "new") {
		choice = common.NewCategorySentinel
	}
	if choice != common.NewCategorySentinel {
		return choice, nil
	}

	name, err := getSimpleText(a.reader, "Enter new category name", a.out)
	if err != nil {
		return "", err
	}
	if name == "" {
		return common.NewCategorySentinel, nil
	}
	return name, nil
}

// List shows the journal, optionally narrowed by date range and category.
func (a *App) List(ctx context.Context) error {
	s, err := a.tracker.Snapshot(ctx, a.userName)
	if err != nil {
		return err
	}
	if len(s.Entries) == 0 {
		fmt.Fprintln(a.out, "No expenses to display")
		return nil
	}

	first, last := dateRange(s.Entries)
	f, err := a.readFilter(first, last, report.Categories(s.Entries))
	if err != nil {
		return err
	}

	printMarkdown(a.out, report.EntriesMarkdown("All Expenses", f.Apply(s.Entries), a.config.Currency))
	return nil
}

// dateRange returns the earliest and latest dates in a non-empty journal.
func dateRange(entries []models.JournalEntry) (first, last models.Date) {
	first, last = entries[0].Date, entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.Before(first) {
			first = e.Date
		}
		if e.Date.After(last) {
			last = e.Date
		}
	}
	return first, last
}

func (a *App) readFilter(first, last models.Date, cats []string) (report.Filter, error) {
	var f report.Filter

	from, err := a.readDate("Start Date", first)
	if err != nil {
		return f, err
	}
	to, err := a.readDate("End Date", last)
	if err != nil {
		return f, err
	}
	f.From, f.To = &from, &to

	fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(append([]string{report.AllCategories}, cats...), ", "))
	f.Category, err = GetTextDefault(a.reader, "Filter by Category", report.AllCategories, a.out)
	return f, err
}

func (a *App) readDate(prompt string, def models.Date) (models.Date, error) {
	s, err := GetTextDefault(a.reader, prompt, def.String(), a.out)
	if err != nil {
		return models.Date{}, err
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return d, nil
}

// Categories prints the rules and offers to add a category or keyword.
func (a *App) Categories(ctx context.Context) error {
	rules, _ := a.tracker.Rules(ctx, a.userName)
	for _, n := range rules.Names() {
		fmt.Fprintf(a.out, "  %-15s %s\n", n, strings.Join(rules.Keywords(n), ", "))
	}

	name, err := getSimpleText(a.reader, "Category to add or extend (empty to skip)", a.out)
	if err != nil || name == "" {
		return err
	}
	keyword, err := getSimpleText(a.reader, "Keyword (optional)", a.out)
	if err != nil {
		return err
	}
	if err := a.tracker.AddCategory(ctx, a.userName, name, keyword); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Categories saved.")
	return nil
}
