package sla

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindow(t *testing.T) {
	w := DayWindow(civil.Date{Year: 2024, Month: time.January, Day: 2})

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC), w.End)

	assert.True(t, w.Contains(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
}

func TestRangeWindow(t *testing.T) {
	start := civil.Date{Year: 2024, Month: time.January, Day: 1}
	end := civil.Date{Year: 2024, Month: time.January, Day: 2}

	t.Run("inclusive bounds", func(t *testing.T) {
		w, err := RangeWindow(start, end)
		require.NoError(t, err)

		assert.True(t, w.Contains(time.Date(2024, 1, 2, 23, 59, 58, 0, time.UTC)))
		assert.False(t, w.Contains(time.Date(2024, 1, 3, 0, 0, 1, 0, time.UTC)))

		first, last := w.Days()
		assert.Equal(t, start, first)
		assert.Equal(t, end, last)
	})

	t.Run("single day range", func(t *testing.T) {
		w, err := RangeWindow(start, start)
		require.NoError(t, err)
		assert.Equal(t, DayWindow(start), w)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := RangeWindow(end, start)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := RangeWindow(civil.Date{Year: 2024, Month: time.February, Day: 30}, end)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}
