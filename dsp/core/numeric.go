package core

import "math"

const (
	defaultEpsilon = 1e-12

	// A4Freq is the reference tuning frequency in Hz.
	A4Freq = 440.0
	// A4Pitch is the MIDI note number of A4.
	A4Pitch = 69

	// MaxMIDI is the largest valid MIDI data value (pitch, velocity, track).
	MaxMIDI = 127
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampMIDI limits v to the MIDI data range [0, 127].
func ClampMIDI(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > MaxMIDI {
		return MaxMIDI
	}
	return uint8(v)
}

// ClampUnit limits v to [0, 1]. NaN maps to 0.
func ClampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// PitchToFreq converts a MIDI note number to a frequency in Hz (A4 = 440 Hz).
func PitchToFreq(pitch uint8) float64 {
	return A4Freq * math.Pow(2, (float64(pitch)-A4Pitch)/12)
}

// FreqToPitch converts a frequency in Hz to the nearest MIDI note number.
// Frequencies outside the MIDI range are clamped.
func FreqToPitch(freqHz float64) uint8 {
	if freqHz <= 0 || !IsFinite(freqHz) {
		return 0
	}
	p := math.Round(math.Log2(freqHz/A4Freq)*12 + A4Pitch)
	return ClampMIDI(int(p))
}

// ScaleLog maps a normalized control value in [0, 1] onto [min, max] on a
// logarithmic scale. min and max must be > 0.
func ScaleLog(value, min, max float64) float64 {
	return min * math.Pow(max/min, ClampUnit(value))
}

// LinToLog maps lin from the linear range [linMin, linMax] onto the
// logarithmic range [logMin, logMax].
func LinToLog(lin, linMin, linMax, logMin, logMax float64) float64 {
	if linMax == linMin {
		return logMin
	}
	norm := (lin - linMin) / (linMax - linMin)
	return logMin * math.Pow(logMax/logMin, norm)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}
