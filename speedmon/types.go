package speedmon

import (
	"time"
)

// WindowBoundary marks the instant cumulative received bytes crossed a
// multiple of the resolution. Index 0 is emitted before any chunk arrives.
type WindowBoundary struct {
	Index     int
	Timestamp time.Time
}

type IntervalSample struct {
	Index    int
	Duration time.Duration
}

type SpeedSample struct {
	Index int
	Mbps  float64
}

// MeasurementRun owns every sample captured by one invocation of the pipeline.
type MeasurementRun struct {
	Resolution int64
	Size       int64
	Start      time.Time
	End        time.Time
	Intervals  []IntervalSample
	Samples    []SpeedSample
}

type Estimate struct {
	Mbps     int64
	NSamples int
	NKept    int
	Stats    *Stats // over all samples, before trimming
	TXSize   int64
	Duration time.Duration
}

type Stats struct {
	NSamples int
	Mean     float64
	StdDev   float64
	StdErr   float64
	Min      float64
	MinIndex int
	Max      float64
	MaxIndex int
	Deciles  []float64
}
