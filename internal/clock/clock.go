package clock

import "time"

// Clock provides the current time so callers can be tested with a fixed one.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system clock.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	T time.Time
}

// NewManual returns a Manual clock set to t.
func NewManual(t time.Time) *Manual {
	return &Manual{T: t}
}

func (m *Manual) Now() time.Time {
	return m.T
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.T = t
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.T = m.T.Add(d)
}
