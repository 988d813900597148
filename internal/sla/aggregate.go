package sla

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// WorstDaysLimit caps the worst-day ranking.
const WorstDaysLimit = 10

// WorstDayEntry counts the SLA violations of one (date, weekday, period) slot.
type WorstDayEntry struct {
	Date      civil.Date
	DayOfWeek time.Weekday
	Period    TimePeriod
	Count     int
}

type slotKey struct {
	date   civil.Date
	period TimePeriod
}

// WorstDays ranks the slots with the most violations, count descending.
// Equal counts are ordered by date ascending, then Morning, Afternoon, Night.
func WorstDays(records []ProcessedRecord, limit int) []WorstDayEntry {
	counts := make(map[slotKey]*WorstDayEntry)
	for _, r := range records {
		if !r.ViolatesSLA {
			continue
		}
		k := slotKey{date: r.Date, period: r.Period}
		e, ok := counts[k]
		if !ok {
			e = &WorstDayEntry{Date: r.Date, DayOfWeek: r.DayOfWeek, Period: r.Period}
			counts[k] = e
		}
		e.Count++
	}

	out := make([]WorstDayEntry, 0, len(counts))
	for _, e := range counts {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Period.index() < out[j].Period.index()
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Heatmap is a weekday × period matrix, rows in Weekdays order and columns
// in Periods order. Notes holds optional per-cell annotations.
type Heatmap struct {
	Counts [7][3]int
	Notes  [7][3]string
}

// Total sums every cell.
func (h Heatmap) Total() int {
	total := 0
	for _, row := range h.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Max returns the largest cell count.
func (h Heatmap) Max() int {
	m := 0
	for _, row := range h.Counts {
		for _, c := range row {
			m = max(m, c)
		}
	}
	return m
}

// At returns the count for a weekday and period.
func (h Heatmap) At(d time.Weekday, p TimePeriod) int {
	return h.Counts[weekdayIndex(d)][p.index()]
}

// Annotated reports whether any cell carries a note.
func (h Heatmap) Annotated() bool {
	for _, row := range h.Notes {
		for _, n := range row {
			if n != "" {
				return true
			}
		}
	}
	return false
}

// BuildHeatmap counts the records accepted by keep; a nil keep accepts all.
func BuildHeatmap(records []ProcessedRecord, keep func(ProcessedRecord) bool) Heatmap {
	var h Heatmap
	for _, r := range records {
		if keep != nil && !keep(r) {
			continue
		}
		h.Counts[weekdayIndex(r.DayOfWeek)][r.Period.index()]++
	}
	return h
}

// WithinSLA keeps records in the "Within SLA" bucket.
func WithinSLA(r ProcessedRecord) bool {
	return r.Status == StatusWithin
}

// WorstDayHeatmap counts every record whose date appears in worst and
// annotates each populated cell with the worst-day dates of that weekday and
// period, e.g. "3 (2024-01-02, 2024-01-09)".
func WorstDayHeatmap(records []ProcessedRecord, worst []WorstDayEntry) Heatmap {
	dates := make(map[civil.Date]struct{}, len(worst))
	for _, w := range worst {
		dates[w.Date] = struct{}{}
	}

	h := BuildHeatmap(records, func(r ProcessedRecord) bool {
		_, ok := dates[r.Date]
		return ok
	})

	for _, day := range Weekdays {
		for _, period := range Periods {
			row, col := weekdayIndex(day), period.index()
			count := h.Counts[row][col]
			if count == 0 {
				continue
			}
			var matched []string
			for _, w := range worst {
				if w.DayOfWeek == day && w.Period == period {
					matched = append(matched, w.Date.String())
				}
			}
			if len(matched) > 0 {
				h.Notes[row][col] = fmt.Sprintf("%d (%s)", count, strings.Join(matched, ", "))
			}
		}
	}
	return h
}

// Summary holds the scalar figures of a report.
type Summary struct {
	Total      int
	MeanHours  float64
	Violations int
	Compliant  int
}

// MeanHoursRounded is the mean duration rounded half away from zero to two
// places for display.
func (s Summary) MeanHoursRounded() decimal.Decimal {
	if math.IsNaN(s.MeanHours) || math.IsInf(s.MeanHours, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(s.MeanHours).Round(2)
}

// ViolationRatio is the share of violating records in [0,1].
func (s Summary) ViolationRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Violations) / float64(s.Total)
}

// Summarize computes the count, mean duration and violation split.
func Summarize(records []ProcessedRecord) Summary {
	s := Summary{Total: len(records)}
	if len(records) == 0 {
		s.MeanHours = math.NaN()
		return s
	}

	var sum float64
	for _, r := range records {
		sum += r.ProcessTimeHours
		if r.ViolatesSLA {
			s.Violations++
		} else {
			s.Compliant++
		}
	}
	s.MeanHours = sum / float64(len(records))
	return s
}

// StatusMean is the mean duration of one SLA bucket.
type StatusMean struct {
	Status    SLAStatus
	MeanHours float64
	Count     int
}

// MeanByStatus averages the duration per bucket, in StatusOrder, skipping
// empty buckets.
func MeanByStatus(records []ProcessedRecord) []StatusMean {
	sums := make(map[SLAStatus]float64)
	counts := make(map[SLAStatus]int)
	for _, r := range records {
		sums[r.Status] += r.ProcessTimeHours
		counts[r.Status]++
	}

	out := make([]StatusMean, 0, len(counts))
	for _, status := range StatusOrder {
		n := counts[status]
		if n == 0 {
			continue
		}
		out = append(out, StatusMean{Status: status, MeanHours: sums[status] / float64(n), Count: n})
	}
	return out
}
