package workbook

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/sla-dashboard/internal/sla"
	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidWorkbook = errors.New("invalid workbook")
	ErrEmptyWorkbook   = errors.New("workbook has no header row")
)

// canonicalLayout is how native Excel date cells are rewritten so the
// day-first parser sees a single unambiguous form.
const canonicalLayout = "2006-01-02 15:04:05"

var timestampColumns = []string{sla.ColPrescribedAt, sla.ColFinalizedAt}

type Options struct {
	Sheet string
}

type Option func(*Options)

// WithSheet reads the named sheet instead of the first one.
func WithSheet(name string) Option {
	return func(o *Options) { o.Sheet = name }
}

// Read parses an .xlsx stream into a table. The first non-blank row is the
// header; blank rows are skipped and short rows are padded.
func Read(r io.Reader, opts ...Option) (*sla.Table, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	sheet := options.Sheet
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrInvalidWorkbook, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidWorkbook, sheet, err)
	}

	table, err := buildTable(rows)
	if err != nil {
		return nil, err
	}
	if err := sla.RequireColumns(table); err != nil {
		return nil, err
	}

	normalizeDates(table)
	return table, nil
}

func buildTable(rows [][]string) (*sla.Table, error) {
	header := -1
	for i, row := range rows {
		if !blank(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, ErrEmptyWorkbook
	}

	columns := make([]string, len(rows[header]))
	for i, c := range rows[header] {
		columns[i] = strings.TrimSpace(c)
	}

	table := &sla.Table{Columns: columns, Rows: make([][]string, 0, len(rows)-header-1)}
	for _, row := range rows[header+1:] {
		if blank(row) {
			continue
		}
		cells := make([]string, len(columns))
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

// normalizeDates rewrites Excel serial date numbers in the timestamp columns.
// Text cells are left for sla.ParseTimestamp.
func normalizeDates(t *sla.Table) {
	for _, name := range timestampColumns {
		col := t.Index(name)
		for _, row := range t.Rows {
			serial, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil || serial <= 0 {
				continue
			}
			ts, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				continue
			}
			row[col] = ts.Round(time.Second).Format(canonicalLayout)
		}
	}
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
