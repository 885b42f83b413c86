package audiofeat

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FramePoint is a single sample of a framewise descriptor curve.
type FramePoint struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Features holds the signal descriptors computed independently of the
// alignment tool. Consumed read-only by the cue refiner.
type Features struct {
	Duration   float64      `json:"duration"`
	SampleRate int          `json:"sample_rate"`
	Onsets     []float64    `json:"onsets"`
	Energy     []FramePoint `json:"energy"`
	Centroid   []FramePoint `json:"centroid"`
	Rolloff    []FramePoint `json:"rolloff"`
	ZeroCross  []FramePoint `json:"zero_cross"`
}

// Empty reports whether the clip should be treated as silence end to end.
func (f Features) Empty() bool {
	return f.Duration <= 0 || len(f.Energy) == 0
}

// MeanEnergy averages the RMS curve over [start, end). Returns 0 when no
// frame falls inside the span.
func (f Features) MeanEnergy(start, end float64) float64 {
	var sum float64
	var n int
	for _, p := range f.Energy {
		if p.Time >= start && p.Time < end {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// EnergyPercentile returns the p-th percentile (0..1) of the RMS
// distribution across the whole clip.
func (f Features) EnergyPercentile(p float64) float64 {
	if len(f.Energy) == 0 {
		return 0
	}
	values := make([]float64, len(f.Energy))
	for i, pt := range f.Energy {
		values[i] = pt.Value
	}
	sort.Float64s(values)
	return stat.Quantile(p, stat.Empirical, values, nil)
}

// NearestOnset finds the detected onset closest to t. The second return is
// false when no onsets were detected.
func (f Features) NearestOnset(t float64) (float64, bool) {
	if len(f.Onsets) == 0 {
		return 0, false
	}
	best := f.Onsets[0]
	for _, o := range f.Onsets[1:] {
		if math.Abs(o-t) < math.Abs(best-t) {
			best = o
		}
	}
	return best, true
}
