package speedmon

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Fastest samples discarded regardless of sample count.
const trimFastestCount = 2

func getMean(series []float64) float64 {
	ret := float64(0)
	nSamplesF64 := float64(len(series))

	for _, element := range series {
		ret += element / nSamplesF64
	}

	return ret
}

func getSquareMean(series []float64) float64 {
	ret := float64(0)
	nSamplesF64 := float64(len(series))

	for _, element := range series {
		ret += element * element / nSamplesF64
	}

	return ret
}

func getSortedCopy(series []float64) []float64 {
	ret := make([]float64, len(series))
	copy(ret, series)
	sort.Float64s(ret)

	return ret
}

func getDeciles(sorted []float64) []float64 {
	ret := []float64{}
	if len(sorted) == 0 {
		return ret
	}

	lastIndexF64 := float64(len(sorted) - 1)
	for decile := 1; decile < 10; decile += 1 {
		ret = append(ret, sorted[int(math.Round(float64(decile)*lastIndexF64/10))])
	}

	return ret
}

func getF64Stats(series []float64) *Stats {
	ret := &Stats{
		Min:      math.Inf(1),
		Max:      math.Inf(-1),
		MinIndex: 0,
		MaxIndex: 0,
	}

	for index, element := range series {
		if element < ret.Min {
			ret.Min = element
			ret.MinIndex = index
		}
		if element > ret.Max {
			ret.Max = element
			ret.MaxIndex = index
		}
	}

	ret.NSamples = len(series)
	if ret.NSamples == 0 {
		ret.Deciles = []float64{}
		return ret
	}

	ret.Mean = getMean(series)
	ret.StdDev = math.Sqrt(getSquareMean(series) - (ret.Mean * ret.Mean))
	ret.StdErr = ret.StdDev / math.Sqrt(float64(ret.NSamples))
	ret.Deciles = getDeciles(getSortedCopy(series))

	return ret
}

func getSpeedValues(samples []SpeedSample) []float64 {
	ret := make([]float64, 0, len(samples))

	for _, sample := range samples {
		ret = append(ret, sample.Mbps)
	}

	return ret
}

// getTrimBounds returns the half-open range of sorted samples kept by the
// trimmed mean: the slowest round(n/4) and the fastest two are dropped.
// math.Round rounds halves away from zero, so n=10 drops 3 slow samples.
func getTrimBounds(nSamples int) (int, int) {
	trimStart := int(math.Round(float64(nSamples) / 4))
	trimEnd := nSamples - trimFastestCount

	return trimStart, trimEnd
}

// GetTrimmedMean sorts the series, trims it and returns the floored mean of
// what remains along with the number of samples kept. The input is not
// modified.
func GetTrimmedMean(series []float64) (int64, int, error) {
	trimStart, trimEnd := getTrimBounds(len(series))
	if trimEnd <= trimStart {
		return 0, 0, errors.Wrapf(ErrInsufficientSamples, "%d samples", len(series))
	}

	kept := getSortedCopy(series)[trimStart:trimEnd]

	sum := float64(0)
	for _, element := range kept {
		sum += element
	}

	return int64(math.Floor(sum / float64(len(kept)))), len(kept), nil
}

// AggregateRun reduces the speed samples of a run to its throughput estimate.
// Mbps is the trimmed mean; Stats describes every sample, untrimmed.
func AggregateRun(run *MeasurementRun) (*Estimate, error) {
	values := getSpeedValues(run.Samples)

	mbps, nKept, err := GetTrimmedMean(values)
	if err != nil {
		return nil, err
	}

	return &Estimate{
		Mbps:     mbps,
		NSamples: len(values),
		NKept:    nKept,
		Stats:    getF64Stats(values),
		TXSize:   run.Size,
		Duration: run.End.Sub(run.Start),
	}, nil
}
