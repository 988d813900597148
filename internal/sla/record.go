package sla

import (
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	ModalityCT        = "CT"
	CareTypeEmergency = "Pronto Atendimento"
)

// Record is one eligible exam row with its timestamps parsed.
type Record struct {
	Row          int // index into Table.Rows
	Modality     string
	CareType     string
	Facility     string
	PrescribedAt time.Time
	FinalizedAt  time.Time
	Fields       []string // the full source row, passthrough columns included
}

// ProcessedRecord carries the derived columns of a Record.
type ProcessedRecord struct {
	Record
	ProcessTimeHours float64
	Status           SLAStatus
	ViolatesSLA      bool
	Date             civil.Date
	DayOfWeek        time.Weekday
	Hour             int
	Period           TimePeriod
}

// DayName is the English weekday name, e.g. "Tuesday".
func (p ProcessedRecord) DayName() string {
	return p.DayOfWeek.String()
}

// EligibleRecords keeps CT emergency rows whose two timestamps both parse.
// Source order is preserved.
func EligibleRecords(t *Table) ([]Record, error) {
	idx, err := indexColumns(t)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(t.Rows))
	for i := range t.Rows {
		modality := t.Cell(i, idx.modality)
		careType := t.Cell(i, idx.careType)
		if modality != ModalityCT || careType != CareTypeEmergency {
			continue
		}

		prescribed, ok := ParseTimestamp(t.Cell(i, idx.prescribedAt))
		if !ok {
			continue
		}
		finalized, ok := ParseTimestamp(t.Cell(i, idx.finalizedAt))
		if !ok {
			continue
		}

		out = append(out, Record{
			Row:          i,
			Modality:     modality,
			CareType:     careType,
			Facility:     t.Cell(i, idx.facility),
			PrescribedAt: prescribed,
			FinalizedAt:  finalized,
			Fields:       t.Rows[i],
		})
	}
	return out, nil
}

// Facilities lists the distinct, non-blank facilities of the eligible
// records in first-appearance order.
func Facilities(t *Table) ([]string, error) {
	records, err := EligibleRecords(t)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if strings.TrimSpace(r.Facility) == "" {
			continue
		}
		if _, ok := seen[r.Facility]; ok {
			continue
		}
		seen[r.Facility] = struct{}{}
		out = append(out, r.Facility)
	}
	return out, nil
}

// SelectRecords applies the facility and prescription-window filters.
func SelectRecords(records []Record, facility string, w Window) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Facility != facility {
			continue
		}
		if !w.Contains(r.PrescribedAt) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Derive computes the per-record derived columns.
func Derive(r Record) ProcessedRecord {
	hours := r.FinalizedAt.Sub(r.PrescribedAt).Seconds() / 3600
	if r.PrescribedAt.IsZero() || r.FinalizedAt.IsZero() {
		hours = math.NaN()
	}

	return ProcessedRecord{
		Record:           r,
		ProcessTimeHours: hours,
		Status:           ClassifySLA(hours),
		ViolatesSLA:      Violates(hours),
		Date:             civil.DateOf(r.PrescribedAt),
		DayOfWeek:        r.PrescribedAt.Weekday(),
		Hour:             r.PrescribedAt.Hour(),
		Period:           PeriodOf(r.PrescribedAt.Hour()),
	}
}
