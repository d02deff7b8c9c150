// Package sheet turns uploaded CSV and XLSX files into batch input rows.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"postmetrics/internal/domain"
)

// Required column headers, compared after trimming and upper-casing.
const (
	ColumnName = "NAME"
	ColumnLink = "LINK"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type: upload a .csv or .xlsx file")
	ErrMissingColumns    = errors.New("file must contain NAME and LINK columns")
	ErrEmptySheet        = errors.New("file has no header row")
)

// Read parses r according to the extension of filename.
func Read(filename string, r io.Reader) ([]domain.BatchInput, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return toInputs(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// toInputs maps the header row to NAME and LINK and keeps data rows in
// order. Fully blank rows are dropped; rows with a blank link are kept so
// they show up as failures.
func toInputs(rows [][]string) ([]domain.BatchInput, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	nameCol, linkCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToUpper(strings.TrimSpace(h)) {
		case ColumnName:
			if nameCol < 0 {
				nameCol = i
			}
		case ColumnLink:
			if linkCol < 0 {
				linkCol = i
			}
		}
	}
	if nameCol < 0 || linkCol < 0 {
		return nil, ErrMissingColumns
	}

	inputs := make([]domain.BatchInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, nameCol))
		link := strings.TrimSpace(cell(row, linkCol))
		if name == "" && link == "" {
			continue
		}
		inputs = append(inputs, domain.BatchInput{Name: name, Link: link})
	}
	return inputs, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
