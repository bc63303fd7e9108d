package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/dmitrijs2005/spendkeeper/internal/report"
)

// Report prints the dashboard: totals, spending by category and the daily
// breakdown for the current month.
func (a *App) Report(ctx context.Context) error {
	s, err := a.tracker.Snapshot(ctx, a.userName)
	if err != nil {
		return err
	}
	summary := report.Summarize(s.Entries, s.Balance, models.Today())
	printMarkdown(a.out, report.Markdown(summary, a.config.Currency))
	return nil
}

// Export writes the journal, optionally filtered, to a file in one of the
// registered formats.
func (a *App) Export(ctx context.Context) error {
	s, err := a.tracker.Snapshot(ctx, a.userName)
	if err != nil {
		return err
	}
	if len(s.Entries) == 0 {
		fmt.Fprintln(a.out, "No expenses to export")
		return nil
	}

	entries := s.Entries
	filtered, err := Confirm(a.reader, "Filter before exporting?", a.out)
	if err != nil {
		return err
	}
	if filtered {
		first, last := dateRange(entries)
		f, err := a.readFilter(first, last, report.Categories(entries))
		if err != nil {
			return err
		}
		entries = f.Apply(entries)
	}

	format, err := GetTextDefault(a.reader, fmt.Sprintf("Format (%s)", strings.Join(report.Formats(), ", ")), a.config.ExportFormat, a.out)
	if err != nil {
		return err
	}

	name := report.DownloadFilename(a.userName, format, models.Today())
	if filtered {
		name = "filtered_" + name
	}
	path, err := GetTextDefault(a.reader, "Save to", name, a.out)
	if err != nil {
		return err
	}

	n, err := a.exportTo(ctx, path, format, entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d expenses to %s\n", n, path)
	return nil
}

func (a *App) exportTo(ctx context.Context, path, format string, entries []models.JournalEntry) (int, error) {
	data, err := report.Export(format, entries)
	if err != nil {
		return 0, err
	}
	err = a.store.WriteFile(ctx, path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
