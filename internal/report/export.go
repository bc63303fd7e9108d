package report

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/spendkeeper/internal/journal"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/xuri/excelize/v2"
)

// ErrNoExportEngine is returned for an export format nothing can produce.
var ErrNoExportEngine = errors.New("no export engine for format")

// Exporter renders entries as a downloadable document.
type Exporter interface {
	Export(entries []models.JournalEntry) ([]byte, error)
	Extension() string
	ContentType() string
}

var engines = map[string]Exporter{
	"xlsx": xlsxExporter{},
	"csv":  csvExporter{},
}

// Formats lists the supported export formats.
func Formats() []string {
	out := make([]string, 0, len(engines))
	for f := range engines {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Engine returns the exporter for format.
func Engine(format string) (Exporter, error) {
	e, ok := engines[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrNoExportEngine, format, strings.Join(Formats(), ", "))
	}
	return e, nil
}

// Export renders entries in format.
func Export(format string, entries []models.JournalEntry) ([]byte, error) {
	e, err := Engine(format)
	if err != nil {
		return nil, err
	}
	return e.Export(entries)
}

// DownloadFilename names an export of username's expenses made on today.
func DownloadFilename(username, format string, today models.Date) string {
	return fmt.Sprintf("%s_expenses_%04d%02d%02d.%s",
		username, today.Year(), int(today.Month()), today.Day(), strings.ToLower(format))
}

type csvExporter struct{}

func (csvExporter) Extension() string   { return "csv" }
func (csvExporter) ContentType() string { return "text/csv" }

func (csvExporter) Export(entries []models.JournalEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := journal.Encode(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type xlsxExporter struct{}

const xlsxSheet = "Sheet1"

func (xlsxExporter) Extension() string { return "xlsx" }
func (xlsxExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (xlsxExporter) Export(entries []models.JournalEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(journal.Header))
	for i, h := range journal.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{e.Date.String(), e.Description, e.Category, e.Amount.InexactFloat64()}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	if err := f.SetColStyle(xlsxSheet, "D", style); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 12); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(xlsxSheet, "B", "C", 24); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
