package service

import "time"

// Clock supplies timestamps for ledger stamping and daily-limit windowing.
// Tests substitute a fixed clock to exercise date rollover.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }

// dayWindow returns the UTC calendar-day bounds [start, end) containing t.
func dayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
