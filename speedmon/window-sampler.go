package speedmon

import (
	"github.com/pkg/errors"
)

// WindowSampler groups consecutive chunks into windows of Resolution bytes and
// stamps each window boundary with the run's timer.
type WindowSampler struct {
	Resolution      int64
	ChunkSize       int64
	ChunksPerWindow int64
	ChunksReceived  int64
	timer           *Timer
	started         bool
}

func NewWindowSampler(resolution int64, chunkSize int64, timer *Timer) (*WindowSampler, error) {
	if resolution <= 0 || chunkSize <= 0 {
		return nil, errors.Errorf("invalid sampler geometry: resolution=%d chunkSize=%d", resolution, chunkSize)
	}
	if resolution%chunkSize != 0 {
		return nil, errors.Errorf("resolution %d is not a multiple of chunk size %d", resolution, chunkSize)
	}

	return &WindowSampler{
		Resolution:      resolution,
		ChunkSize:       chunkSize,
		ChunksPerWindow: resolution / chunkSize,
		timer:           timer,
	}, nil
}

func (s *WindowSampler) boundary() WindowBoundary {
	return WindowBoundary{
		Index:     int(s.ChunksReceived / s.ChunksPerWindow),
		Timestamp: s.timer.Mark(),
	}
}

// Start emits the boundary opening window 0. It must be called once, before
// the first chunk is observed.
func (s *WindowSampler) Start() WindowBoundary {
	s.started = true

	return s.boundary()
}

// Observe counts one chunk of the given size and returns the boundary it
// closes, if any.
func (s *WindowSampler) Observe(size int) (WindowBoundary, bool, error) {
	if !s.started {
		return WindowBoundary{}, false, errors.New("window sampler observed a chunk before Start")
	}
	if int64(size) > s.ChunkSize {
		return WindowBoundary{}, false, errors.Wrapf(ErrChunkTooLarge, "got %d bytes, want at most %d", size, s.ChunkSize)
	}

	s.ChunksReceived += 1
	if s.ChunksReceived%s.ChunksPerWindow != 0 {
		return WindowBoundary{}, false, nil
	}

	return s.boundary(), true, nil
}
