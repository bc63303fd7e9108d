package report

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/spendkeeper/internal/models"
	md "github.com/nao1215/markdown"
)

// Markdown renders the dashboard.
func Markdown(s Summary, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Spending Dashboard on %s", s.Today))

	if s.Count == 0 {
		doc.PlainText("No expenses recorded yet.")
		doc.PlainText(fmt.Sprintf("Current Balance: %s", FormatCurrency(s.Balance, currency)))
		return doc.String()
	}

	lines := []string{
		fmt.Sprintf("Total Spent: %s", FormatCurrency(s.TotalSpent, currency)),
		fmt.Sprintf("Remaining Balance: %s", FormatCurrency(s.Balance, currency)),
		fmt.Sprintf("Expenses: %d", s.Count),
	}
	if s.HasSpentPercent {
		lines = append(lines, fmt.Sprintf("You've spent %s%% of your money", s.SpentPercent.StringFixed(1)))
	}
	doc.BulletList(lines...)

	doc.H2("Spending by Category")
	rows := make([][]string, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		share := "-"
		if s.TotalSpent.IsPositive() {
			share = c.Amount.Div(s.TotalSpent).Mul(hundred).StringFixed(1) + "%"
		}
		rows = append(rows, []string{c.Category, FormatCurrency(c.Amount, currency), share})
	}
	doc.Table(md.TableSet{Header: []string{"Category", "Amount", "Share"}, Rows: rows})

	doc.H2(fmt.Sprintf("Daily Spending in %s %d", s.Today.Month(), s.Today.Year()))
	if len(s.Daily) == 0 {
		doc.PlainText("Nothing spent this month.")
	} else {
		rows = make([][]string, 0, len(s.Daily))
		for _, d := range s.Daily {
			rows = append(rows, []string{d.Date.String(), FormatCurrency(d.Amount, currency)})
		}
		doc.Table(md.TableSet{Header: []string{"Day", "Amount"}, Rows: rows})
	}

	return doc.String()
}

// EntriesMarkdown renders a listing of entries followed by their total.
func EntriesMarkdown(title string, entries []models.JournalEntry, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H2(title)
	if len(entries) == 0 {
		doc.PlainText("No expenses to display.")
		return doc.String()
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Date.String(), e.Description, e.Category, FormatCurrency(e.Amount, currency)})
	}
	doc.Table(md.TableSet{Header: []string{"Date", "Description", "Category", "Amount"}, Rows: rows})
	doc.PlainText(fmt.Sprintf("Filtered Total: %s", FormatCurrency(Total(entries), currency)))

	return doc.String()
}
