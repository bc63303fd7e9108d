package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/shopspring/decimal"
)

// Header is the column row every journal starts with.
var Header = []string{"Date", "Description", "Category", "Amount"}

// Encode writes the header followed by one row per entry.
func Encode(w io.Writer, entries []models.JournalEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{e.Date.String(), e.Description, e.Category, e.Amount.String()}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a journal. Columns are found by header name, so reordered or
// extra columns are tolerated; absent columns read as empty values. An
// unparsable date or amount fails the whole decode.
func Decode(r io.Reader) ([]models.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []models.JournalEntry{}, nil
	}
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := col[h]; !dup {
			col[h] = i
		}
	}
	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	entries := []models.JournalEntry{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var e models.JournalEntry
		if err := e.Date.UnmarshalText([]byte(cell(row, "Date"))); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e.Description = cell(row, "Description")
		e.Category = cell(row, "Category")

		if s := strings.TrimSpace(cell(row, "Amount")); s != "" {
			e.Amount, err = decimal.NewFromString(s)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid amount %q: %w", line, s, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
