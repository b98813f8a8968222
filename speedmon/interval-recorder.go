package speedmon

import (
	"github.com/pkg/errors"
)

// IntervalRecorder turns the boundaries of one run into per-window durations.
// It is acquired per run and released with Close on every exit path.
type IntervalRecorder struct {
	previous  *WindowBoundary
	intervals []IntervalSample
	closed    bool
}

func OpenIntervalRecorder() *IntervalRecorder {
	return &IntervalRecorder{
		intervals: []IntervalSample{},
	}
}

func (r *IntervalRecorder) Record(boundary WindowBoundary) error {
	if r.closed {
		return ErrRecorderClosed
	}

	if r.previous == nil {
		r.previous = &boundary
		return nil
	}

	if boundary.Index <= r.previous.Index {
		return errors.Wrapf(ErrNonMonotonicBoundary, "window %d after window %d", boundary.Index, r.previous.Index)
	}

	duration := boundary.Timestamp.Sub(r.previous.Timestamp)
	if duration <= 0 {
		return errors.Wrapf(ErrDegenerateDuration, "window %d lasted %v", boundary.Index, duration)
	}

	r.intervals = append(r.intervals, IntervalSample{
		Index:    r.previous.Index,
		Duration: duration,
	})
	r.previous = &boundary

	return nil
}

func (r *IntervalRecorder) Len() int {
	return len(r.intervals)
}

// Close releases the recorder and hands over the intervals captured so far.
// Later calls return nil.
func (r *IntervalRecorder) Close() []IntervalSample {
	if r.closed {
		return nil
	}

	ret := r.intervals
	r.closed = true
	r.intervals = nil
	r.previous = nil

	return ret
}
