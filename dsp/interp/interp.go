package interp

// Mode selects how fractional read positions are reconstructed.
type Mode int

const (
	// None truncates the read position to the nearest older stored sample.
	None Mode = iota
	// Linear blends the two neighbouring samples.
	Linear
	// Cubic uses 4-point Hermite interpolation over the neighbouring samples.
	Cubic
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return "unknown"
	}
}

// Taps returns the number of stored samples the mode reads around a position.
func (m Mode) Taps() int {
	switch m {
	case Linear:
		return 2
	case Cubic:
		return 4
	default:
		return 1
	}
}

// Linear2 interpolates from x0 to x1 at fraction t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
