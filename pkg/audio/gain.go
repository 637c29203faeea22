package audio

import "math"

const (
	// QuietPeakThreshold is the peak amplitude below which a finished
	// recording gets a gain boost. Many USB microphones default to very low
	// input levels.
	QuietPeakThreshold = 8000

	// MaxGainFactor caps the boost so noise is not amplified without bound.
	MaxGainFactor = 3.0

	// LowLevelWarningThreshold is the peak below which the recording is
	// probably too quiet to transcribe and the user should be warned.
	LowLevelWarningThreshold = 500
)

// GainFactor returns the multiplier ApplyGain would use for a recording with
// the given peak amplitude. A factor of 1.0 means no boost.
func GainFactor(peak int) float64 {
	if peak <= 0 || peak >= QuietPeakThreshold {
		return 1.0
	}
	return math.Min(QuietPeakThreshold/float64(peak), MaxGainFactor)
}

// ApplyGain boosts quiet recordings in place, scaling every sample by
// min(threshold/peak, MaxGainFactor) and clamping to the 16-bit range.
// Recordings at or above the threshold are left untouched. The applied
// factor is returned.
func ApplyGain(samples []int16, peak int) float64 {
	factor := GainFactor(peak)
	if factor == 1.0 {
		return factor
	}

	for i, s := range samples {
		v := float64(s) * factor
		switch {
		case v > math.MaxInt16:
			samples[i] = math.MaxInt16
		case v < math.MinInt16:
			samples[i] = math.MinInt16
		default:
			samples[i] = int16(v)
		}
	}
	return factor
}
