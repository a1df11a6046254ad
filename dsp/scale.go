package dsp

import (
	"math"

	"github.com/noriah/visgrid/util"
)

// Scaling Constants
const (
	// ScalingSlowWindow in frames
	ScalingSlowWindow = 50

	// ScalingFastWindow in frames
	ScalingFastWindow = ScalingSlowWindow / 10

	// ScalingDumpPercent is how much we erase on rescale
	ScalingDumpPercent = 0.75

	ScalingResetDeviation = 1
)

// Scaler smooths the peak used to normalize successive frames. A jump of
// the recent peaks away from the long-term mean drops most of the history.
type Scaler struct {
	slow *util.MovingWindow
	fast *util.MovingWindow
}

func NewScaler() *Scaler {
	return &Scaler{
		slow: util.NewMovingWindow(ScalingSlowWindow),
		fast: util.NewMovingWindow(ScalingFastWindow),
	}
}

// Update adds peak and returns the magnitude to divide values by.
func (s *Scaler) Update(peak float64) float64 {
	if peak <= 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		mean, sd := s.slow.Stats()
		return magnitude(mean, sd)
	}

	s.fast.Update(peak)

	var vMean, vSD = s.slow.Update(peak)

	if length := s.slow.Len(); length > s.fast.Cap() {
		var vMag = math.Abs(s.fast.Mean() - vMean)
		if vMag > (ScalingResetDeviation * vSD) {
			s.slow.Drop(int(float64(length) * ScalingDumpPercent))
			vMean, vSD = s.slow.Stats()
		}
	}

	return magnitude(vMean, vSD)
}

func magnitude(mean, sd float64) float64 {
	if mag := mean + (2 * sd); mag > 0 {
		return mag
	}
	return 1
}
