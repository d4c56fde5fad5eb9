// Package timer tracks frame delta and elapsed time.
package timer

import "time"

// Timer measures time between Update calls. Update must run once per frame
// before Delta or Elapsed are read.
type Timer struct {
	now       func() time.Time
	start     time.Time
	previous  time.Duration
	current   time.Duration
	delta     time.Duration
	timescale float64
}

// New creates a timer on the wall clock.
func New() *Timer {
	return NewWithClock(time.Now)
}

// NewWithClock creates a timer reading time from now.
func NewWithClock(now func() time.Time) *Timer {
	t := &Timer{now: now, timescale: 1}
	t.Reset()
	return t
}

// Reset restarts elapsed time at zero.
func (t *Timer) Reset() {
	t.start = t.now()
	t.previous = 0
	t.current = 0
	t.delta = 0
}

// Update samples the clock.
func (t *Timer) Update() {
	t.previous = t.current
	t.current = t.now().Sub(t.start)
	t.delta = time.Duration(float64(t.current-t.previous) * t.timescale)
}

// SetTimescale scales subsequent deltas. Negative values are treated as zero.
func (t *Timer) SetTimescale(s float64) {
	if s < 0 {
		s = 0
	}
	t.timescale = s
}

// Delta returns seconds between the last two updates.
func (t *Timer) Delta() float32 {
	return float32(t.delta.Seconds())
}

// Elapsed returns seconds from Reset to the last update.
func (t *Timer) Elapsed() float32 {
	return float32(t.current.Seconds())
}
