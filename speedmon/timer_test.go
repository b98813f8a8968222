package speedmon

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

// stepClock advances by step on every reading.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{
		now:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		step: step,
	}
}

func (c *stepClock) Now() time.Time {
	ret := c.now
	c.now = c.now.Add(c.step)

	return ret
}

// scriptedClock replays the given offsets from a fixed origin, then repeats the
// last one.
type scriptedClock struct {
	origin  time.Time
	offsets []time.Duration
	next    int
}

func newScriptedClock(offsets ...time.Duration) *scriptedClock {
	return &scriptedClock{
		origin:  time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		offsets: offsets,
	}
}

func (c *scriptedClock) Now() time.Time {
	index := c.next
	if index >= len(c.offsets) {
		index = len(c.offsets) - 1
	} else {
		c.next += 1
	}

	return c.origin.Add(c.offsets[index])
}

func TestTimerMark(t *testing.T) {
	clock := newStepClock(5 * time.Millisecond)
	timer := NewTimer(clock)

	first := timer.Mark()
	assert.Equal(t, timer.LastMark(), first)

	second := timer.Mark()
	assert.Equal(t, second.Sub(first), 5*time.Millisecond)
	assert.Equal(t, timer.LastMark(), second)
}

func TestTimersAreIndependent(t *testing.T) {
	clock := newStepClock(time.Millisecond)
	a := NewTimer(clock)
	b := NewTimer(clock)

	markA := a.Mark()
	markB := b.Mark()

	assert.Equal(t, a.LastMark(), markA)
	assert.Equal(t, b.LastMark(), markB)
	assert.Assert(t, markB.After(markA))
}

func TestNewTimerDefaultsToSystemClock(t *testing.T) {
	timer := NewTimer(nil)

	before := time.Now()
	mark := timer.Mark()

	assert.Assert(t, !mark.Before(before))
}
