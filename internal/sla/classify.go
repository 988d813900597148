package sla

import (
	"math"
	"time"
)

// SLAStatus buckets a turnaround time.
type SLAStatus string

const (
	StatusNoData     SLAStatus = "No Data"
	StatusWithin     SLAStatus = "Within SLA"
	StatusOneToTwo   SLAStatus = "1 to 2 hours"
	StatusTwoToThree SLAStatus = "2 to 3 hours"
	StatusOverThree  SLAStatus = "Over 3 hours"
)

// StatusOrder lists the buckets from best to worst.
var StatusOrder = []SLAStatus{StatusWithin, StatusOneToTwo, StatusTwoToThree, StatusOverThree, StatusNoData}

// SLAThresholdHours is the turnaround limit; anything strictly above it is a
// violation.
const SLAThresholdHours = 1.0

// ClassifySLA maps a duration in hours to its bucket. Upper bounds are
// inclusive. NaN means the duration is unknown.
func ClassifySLA(hours float64) SLAStatus {
	switch {
	case math.IsNaN(hours):
		return StatusNoData
	case hours <= 1:
		return StatusWithin
	case hours <= 2:
		return StatusOneToTwo
	case hours <= 3:
		return StatusTwoToThree
	default:
		return StatusOverThree
	}
}

// Violates reports whether the duration breaks the SLA. Negative durations
// (finalized before prescribed) are passed through and do not violate.
func Violates(hours float64) bool {
	return hours > SLAThresholdHours
}

// TimePeriod is a coarse part of the day.
type TimePeriod string

const (
	Morning   TimePeriod = "Morning"
	Afternoon TimePeriod = "Afternoon"
	Night     TimePeriod = "Night"
)

// Periods is the column order of every heatmap.
var Periods = []TimePeriod{Morning, Afternoon, Night}

// PeriodOf buckets an hour of day: [6,12) Morning, [12,18) Afternoon,
// everything else Night.
func PeriodOf(hour int) TimePeriod {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Afternoon
	default:
		return Night
	}
}

func (p TimePeriod) index() int {
	switch p {
	case Morning:
		return 0
	case Afternoon:
		return 1
	default:
		return 2
	}
}

// Weekdays is the row order of every heatmap, Monday first.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
