package distortion

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// MinusInfinityDB is the level reported for silence.
const MinusInfinityDB = -100.0

// GainToDecibels converts a linear gain to dB. Gains at or below zero, and
// anything quieter than MinusInfinityDB, report MinusInfinityDB.
func GainToDecibels(gain float64) float64 {
	if gain <= 0 {
		return MinusInfinityDB
	}
	return math.Max(MinusInfinityDB, dspcore.LinearToDB(gain))
}

// DecibelsToGain converts dB to linear gain. Levels at or below
// MinusInfinityDB map to exact silence.
func DecibelsToGain(db float64) float64 {
	if db <= MinusInfinityDB {
		return 0
	}
	return dspcore.DBToLinear(db)
}

// sliderDecibels applies the squared gain law to a slider value and reports it in dB.
func sliderDecibels(v float64) float64 {
	return GainToDecibels(v * v)
}

// ClipThreshold derives the hard-clip threshold from the Gain parameter.
// It also returns the drive in dB, which the Special mode uses as its
// pre-shaper multiplier.
func ClipThreshold(gain float64) (threshold, driveDB float64) {
	driveDB = sliderDecibels(gain)
	return DecibelsToGain(-driveDB), driveDB
}
