package speedmon

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInsufficientSamples  = errors.New("not enough speed measurements recorded")
	ErrDegenerateDuration   = errors.New("window duration is not positive")
	ErrPayloadTooSmall      = errors.New("payload is too small")
	ErrChunkTooLarge        = errors.New("chunk exceeds configured chunk size")
	ErrRecorderClosed       = errors.New("interval recorder already released")
	ErrNonMonotonicBoundary = errors.New("window index is not increasing")
	ErrStreamFault          = errors.New("byte stream failed")
)

// StreamError reports a failure of the byte source: transport errors, bad
// status, absent body or an aborted read.
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

func (e *StreamError) Is(target error) bool {
	return target == ErrStreamFault
}

func streamFault(op string, err error) error {
	return &StreamError{Op: op, Err: err}
}
