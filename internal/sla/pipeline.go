package sla

import "errors"

// ErrNoData is the terminal outcome of a filter that leaves no records. It is
// not a failure: callers render a "no data" message instead of a report.
var ErrNoData = errors.New("no data for the selected filters")

// Filters are the user's selections for one pipeline run.
type Filters struct {
	Facility string
	Window   Window
}

// Report is everything rendered for one set of filters.
type Report struct {
	Facility         string
	Window           Window
	Columns          []string // header of the source table, for Filtered
	Filtered         []Record
	Processed        []ProcessedRecord
	Summary          Summary
	MeanByStatus     []StatusMean
	WorstDays        []WorstDayEntry
	HeatmapAll       Heatmap
	HeatmapWithinSLA Heatmap
	HeatmapWorstDays Heatmap
}

// Run executes the four stages against an uploaded table. It never mutates
// the table and keeps no state between calls.
func Run(t *Table, f Filters) (*Report, error) {
	eligible, err := EligibleRecords(t)
	if err != nil {
		return nil, err
	}

	filtered := SelectRecords(eligible, f.Facility, f.Window)
	if len(filtered) == 0 {
		return nil, ErrNoData
	}

	processed := make([]ProcessedRecord, len(filtered))
	for i, r := range filtered {
		processed[i] = Derive(r)
	}

	worst := WorstDays(processed, WorstDaysLimit)

	return &Report{
		Facility:         f.Facility,
		Window:           f.Window,
		Columns:          t.Columns,
		Filtered:         filtered,
		Processed:        processed,
		Summary:          Summarize(processed),
		MeanByStatus:     MeanByStatus(processed),
		WorstDays:        worst,
		HeatmapAll:       BuildHeatmap(processed, nil),
		HeatmapWithinSLA: BuildHeatmap(processed, WithinSLA),
		HeatmapWorstDays: WorstDayHeatmap(processed, worst),
	}, nil
}
