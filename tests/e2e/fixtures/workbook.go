// Package fixtures builds exam workbooks for the end-to-end suite.
package fixtures

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/godilite/sla-dashboard/internal/sla"
)

const timeLayout = "02/01/2006 15:04:05"

// Exam is one spreadsheet row.
type Exam struct {
	ID         int
	Modality   string
	CareType   string
	Facility   string
	Prescribed time.Time
	Turnaround time.Duration
}

// CT returns an emergency CT exam.
func CT(id int, facility string, prescribed time.Time, turnaround time.Duration) Exam {
	return Exam{
		ID:         id,
		Modality:   sla.ModalityCT,
		CareType:   sla.CareTypeEmergency,
		Facility:   facility,
		Prescribed: prescribed,
		Turnaround: turnaround,
	}
}

// Columns is the default header.
var Columns = []string{"ID", sla.ColModality, sla.ColCareType, sla.ColFacility, sla.ColPrescribedAt, sla.ColFinalizedAt}

// Workbook writes the exams under header into a single-sheet .xlsx.
func Workbook(header []string, exams ...Exam) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow("Sheet1", "A1", &row); err != nil {
		return nil, err
	}

	for i, e := range exams {
		values := map[string]any{
			"ID":                e.ID,
			sla.ColModality:     e.Modality,
			sla.ColCareType:     e.CareType,
			sla.ColFacility:     e.Facility,
			sla.ColPrescribedAt: e.Prescribed.Format(timeLayout),
			sla.ColFinalizedAt:  e.Prescribed.Add(e.Turnaround).Format(timeLayout),
		}
		cells := make([]any, len(header))
		for j, h := range header {
			cells[j] = values[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow("Sheet1", cell, &cells); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
