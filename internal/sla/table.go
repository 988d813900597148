package sla

import (
	"errors"
	"fmt"
)

// Required column names of the uploaded exam table.
const (
	ColModality     = "MODALIDADE"
	ColCareType     = "TIPO_ATENDIMENTO"
	ColFacility     = "UNIDADE"
	ColPrescribedAt = "DATA_HORA_PRESCRICAO"
	ColFinalizedAt  = "STATUS_ALAUDAR"
)

// RequiredColumns lists the columns every uploaded table must carry.
var RequiredColumns = []string{ColModality, ColCareType, ColFacility, ColPrescribedAt, ColFinalizedAt}

var ErrMissingColumn = errors.New("required column missing")

// Table is the raw row/column view of an uploaded spreadsheet. Extra columns
// are carried through untouched.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row/column, or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// RequireColumns reports the first required column absent from the table.
func RequireColumns(t *Table) error {
	if t == nil {
		return fmt.Errorf("%w: table is nil", ErrMissingColumn)
	}
	for _, name := range RequiredColumns {
		if t.Index(name) < 0 {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return nil
}

type columnIndex struct {
	modality, careType, facility, prescribedAt, finalizedAt int
}

func indexColumns(t *Table) (columnIndex, error) {
	if err := RequireColumns(t); err != nil {
		return columnIndex{}, err
	}
	return columnIndex{
		modality:     t.Index(ColModality),
		careType:     t.Index(ColCareType),
		facility:     t.Index(ColFacility),
		prescribedAt: t.Index(ColPrescribedAt),
		finalizedAt:  t.Index(ColFinalizedAt),
	}, nil
}
