package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"postmetrics/internal/domain"
)

// commentSeparator joins comment texts into one cell.
const commentSeparator = " | "

// Header returns the column names of an exported result sheet.
func Header() []string {
	h := []string{ColumnName, ColumnLink, "PLATFORM"}
	for _, m := range domain.AllMetrics {
		h = append(h, strings.ToUpper(string(m)))
	}
	return append(h, "MEDIA_TYPE", "COMMENT_TEXTS", "ERROR")
}

// Record flattens one row in Header order. Placeholder rows carry N/A in
// every metric column.
func Record(row domain.BatchRow) []string {
	platform := domain.NotAvailable
	if row.Platform != "" {
		platform = row.Platform.String()
	}

	rec := []string{row.Name, row.Link, platform}
	for _, m := range domain.AllMetrics {
		rec = append(rec, row.Value(m))
	}

	errText := ""
	if row.Placeholder() && row.Metrics != nil {
		errText = row.Metrics.Error
	}
	return append(rec, row.MediaType(), strings.Join(row.CommentTexts(), commentSeparator), errText)
}

// Write exports rows in the format named by the extension of filename.
func Write(filename string, w io.Writer, rows []domain.BatchRow) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return writeCSV(w, rows)
	case ".xlsx":
		return writeXLSX(w, rows)
	default:
		return ErrUnsupportedFormat
	}
}

func writeCSV(w io.Writer, rows []domain.BatchRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(Record(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, rows []domain.BatchRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if err := f.SetSheetRow(sheetName, "A1", toCells(Header())); err != nil {
		return err
	}
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, ref, toCells(Record(row))); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}

func toCells(values []string) *[]any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
