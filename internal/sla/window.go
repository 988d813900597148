package sla

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

var ErrInvalidWindow = errors.New("invalid date window")

// Window is an inclusive prescription-time window. Both bounds are whole
// seconds: the end of a day is 23:59:59.
type Window struct {
	Start time.Time
	End   time.Time
}

const lastSecond = 24*time.Hour - time.Second

// DayWindow covers a single calendar day, 00:00:00 to 23:59:59.
func DayWindow(day civil.Date) Window {
	start := day.In(time.UTC)
	return Window{Start: start, End: start.Add(lastSecond)}
}

// RangeWindow covers start 00:00:00 through end 23:59:59.
func RangeWindow(start, end civil.Date) (Window, error) {
	if !start.IsValid() || !end.IsValid() {
		return Window{}, fmt.Errorf("%w: invalid date", ErrInvalidWindow)
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow, end, start)
	}
	return Window{
		Start: start.In(time.UTC),
		End:   end.In(time.UTC).Add(lastSecond),
	}, nil
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the first and last calendar day covered.
func (w Window) Days() (civil.Date, civil.Date) {
	return civil.DateOf(w.Start), civil.DateOf(w.End)
}
