package speedmon

import (
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock reads the wall clock; time.Now carries a monotonic reading, so
// differences are immune to wall clock steps.
var SystemClock Clock = systemClock{}

// Timer is the timing mark owned by a single measurement run.
type Timer struct {
	clock Clock
	mark  time.Time
}

func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock
	}

	return &Timer{clock: clock}
}

func (t *Timer) Now() time.Time {
	return t.clock.Now()
}

// Mark resets the interval clock and returns the new mark.
func (t *Timer) Mark() time.Time {
	t.mark = t.clock.Now()

	return t.mark
}

func (t *Timer) LastMark() time.Time {
	return t.mark
}
