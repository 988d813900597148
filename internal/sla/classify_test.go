package sla

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifySLA(t *testing.T) {
	cases := []struct {
		name  string
		hours float64
		want  SLAStatus
	}{
		{"half hour", 0.5, StatusWithin},
		{"exactly one hour", 1.0, StatusWithin},
		{"just over one hour", 1.0000001, StatusOneToTwo},
		{"exactly two hours", 2.0, StatusOneToTwo},
		{"two and a half", 2.5, StatusTwoToThree},
		{"exactly three hours", 3.0, StatusTwoToThree},
		{"just over three hours", 3.0001, StatusOverThree},
		{"a day", 24, StatusOverThree},
		{"unknown duration", math.NaN(), StatusNoData},
		// Inverted timestamps are not clamped; they land in the first bucket.
		{"negative duration", -2, StatusWithin},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySLA(tc.hours))
		})
	}
}

func TestViolates(t *testing.T) {
	assert.False(t, Violates(0.5))
	assert.False(t, Violates(1.0))
	assert.True(t, Violates(1.0000001))
	assert.True(t, Violates(5))
	assert.False(t, Violates(math.NaN()))

	t.Run("negative duration passes through", func(t *testing.T) {
		// Open behaviour: finalization before prescription is neither
		// rejected nor flagged.
		assert.False(t, Violates(-3))
	})
}

func TestPeriodOf(t *testing.T) {
	cases := map[int]TimePeriod{
		0:  Night,
		5:  Night,
		6:  Morning,
		11: Morning,
		12: Afternoon,
		17: Afternoon,
		18: Night,
		23: Night,
	}
	for hour, want := range cases {
		assert.Equal(t, want, PeriodOf(hour), "hour %d", hour)
	}
}

func TestWeekdayIndex(t *testing.T) {
	for i, d := range Weekdays {
		assert.Equal(t, i, weekdayIndex(d))
	}
	assert.Equal(t, 6, weekdayIndex(time.Sunday))
	assert.Equal(t, 0, weekdayIndex(time.Monday))
}
