package speedmon

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	// ConversionFactor turns bytes per millisecond into megabits per second:
	// 8 bits per byte, 1000 ms per second, 10^6 bits per megabit.
	ConversionFactor = 0.008

	Resolution        = int64(1024 * 1024) // 1 MiB
	ChunkSize         = int64(16 * 1024)   // 16 KiB
	MinPayloadWindows = 6
)

func durationMS(duration time.Duration) float64 {
	return float64(duration) / float64(time.Millisecond)
}

// GetSpeed converts the time one window of resolution bytes took to arrive
// into megabits per second.
func GetSpeed(interval IntervalSample, resolution int64) (SpeedSample, error) {
	if interval.Duration <= 0 {
		return SpeedSample{}, errors.Wrapf(ErrDegenerateDuration, "window %d lasted %v", interval.Index, interval.Duration)
	}

	mbps := ConversionFactor * float64(resolution) / durationMS(interval.Duration)
	if math.IsInf(mbps, 0) || math.IsNaN(mbps) {
		return SpeedSample{}, errors.Wrapf(ErrDegenerateDuration, "window %d yields %v Mbps", interval.Index, mbps)
	}

	return SpeedSample{
		Index: interval.Index,
		Mbps:  mbps,
	}, nil
}

func GetSpeeds(intervals []IntervalSample, resolution int64) ([]SpeedSample, error) {
	ret := make([]SpeedSample, 0, len(intervals))

	for _, interval := range intervals {
		sample, err := GetSpeed(interval, resolution)
		if err != nil {
			return nil, err
		}
		ret = append(ret, sample)
	}

	return ret, nil
}
