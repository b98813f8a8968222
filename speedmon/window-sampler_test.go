package speedmon

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestNewWindowSampler(t *testing.T) {
	sampler, err := NewWindowSampler(Resolution, ChunkSize, NewTimer(newStepClock(time.Millisecond)))

	assert.NilError(t, err)
	assert.Equal(t, sampler.ChunksPerWindow, int64(64))
}

func TestNewWindowSampler_RejectsUnevenGeometry(t *testing.T) {
	_, err := NewWindowSampler(1000, 300, NewTimer(nil))
	assert.ErrorContains(t, err, "not a multiple")

	_, err = NewWindowSampler(0, ChunkSize, NewTimer(nil))
	assert.ErrorContains(t, err, "invalid sampler geometry")
}

func TestWindowSampler_128Chunks(t *testing.T) {
	clock := newStepClock(time.Millisecond)
	sampler, err := NewWindowSampler(Resolution, ChunkSize, NewTimer(clock))
	assert.NilError(t, err)

	initial := sampler.Start()
	assert.Equal(t, initial.Index, 0)

	boundaries := []WindowBoundary{}
	closedAtChunk := []int64{}
	for chunk := 0; chunk < 128; chunk += 1 {
		boundary, closed, err := sampler.Observe(int(ChunkSize))
		assert.NilError(t, err)

		if closed {
			boundaries = append(boundaries, boundary)
			closedAtChunk = append(closedAtChunk, sampler.ChunksReceived)
		}
	}

	assert.DeepEqual(t, closedAtChunk, []int64{64, 128})
	assert.Equal(t, len(boundaries), 2)
	assert.Equal(t, boundaries[0].Index, 1)
	assert.Equal(t, boundaries[1].Index, 2)
	assert.Assert(t, boundaries[0].Timestamp.After(initial.Timestamp))
	assert.Assert(t, boundaries[1].Timestamp.After(boundaries[0].Timestamp))
}

func TestWindowSampler_ShortStreamOnlyInitialBoundary(t *testing.T) {
	sampler, err := NewWindowSampler(Resolution, ChunkSize, NewTimer(newStepClock(time.Millisecond)))
	assert.NilError(t, err)

	sampler.Start()
	for chunk := 0; chunk < 63; chunk += 1 {
		_, closed, err := sampler.Observe(int(ChunkSize))
		assert.NilError(t, err)
		assert.Assert(t, !closed)
	}
}

func TestWindowSampler_ShortFinalChunkCounts(t *testing.T) {
	sampler, err := NewWindowSampler(4, 2, NewTimer(newStepClock(time.Millisecond)))
	assert.NilError(t, err)

	sampler.Start()
	_, closed, err := sampler.Observe(2)
	assert.NilError(t, err)
	assert.Assert(t, !closed)

	boundary, closed, err := sampler.Observe(1)
	assert.NilError(t, err)
	assert.Assert(t, closed)
	assert.Equal(t, boundary.Index, 1)
}

func TestWindowSampler_RejectsOversizedChunk(t *testing.T) {
	sampler, err := NewWindowSampler(Resolution, ChunkSize, NewTimer(nil))
	assert.NilError(t, err)

	sampler.Start()
	_, _, err = sampler.Observe(int(ChunkSize) + 1)

	assert.ErrorIs(t, err, ErrChunkTooLarge)
	assert.Equal(t, sampler.ChunksReceived, int64(0))
}

func TestWindowSampler_ObserveBeforeStart(t *testing.T) {
	sampler, err := NewWindowSampler(Resolution, ChunkSize, NewTimer(nil))
	assert.NilError(t, err)

	_, _, err = sampler.Observe(int(ChunkSize))

	assert.ErrorContains(t, err, "before Start")
}
