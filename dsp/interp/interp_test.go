package interp

import "testing"

func TestHermite4IdentityOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0
	for _, tc := range []struct {
		t float64
		w float64
	}{
		{t: 0.0, w: 0.0},
		{t: 0.25, w: 0.25},
		{t: 0.5, w: 0.5},
		{t: 1.0, w: 1.0},
	} {
		got := Hermite4(tc.t, xm1, x0, x1, x2)
		if diff := got - tc.w; diff < -1e-12 || diff > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", tc.t, got, tc.w)
		}
	}
}

func TestHermite4ExactAtKnots(t *testing.T) {
	xm1, x0, x1, x2 := 0.3, -0.7, 0.9, 0.1
	if got := Hermite4(0, xm1, x0, x1, x2); got != x0 {
		t.Fatalf("t=0: got %v want %v", got, x0)
	}
	if got := Hermite4(1, xm1, x0, x1, x2); got-x1 > 1e-12 || x1-got > 1e-12 {
		t.Fatalf("t=1: got %v want %v", got, x1)
	}
}

func TestLinear2(t *testing.T) {
	if got := Linear2(0.25, 2, 4); got != 2.5 {
		t.Fatalf("got %v want 2.5", got)
	}
	if got := Linear2(0, 2, 4); got != 2 {
		t.Fatalf("got %v want 2", got)
	}
}

func TestModeTaps(t *testing.T) {
	for _, tc := range []struct {
		mode Mode
		taps int
		name string
	}{
		{None, 1, "none"},
		{Linear, 2, "linear"},
		{Cubic, 4, "cubic"},
	} {
		if got := tc.mode.Taps(); got != tc.taps {
			t.Fatalf("%v taps: got %d want %d", tc.mode, got, tc.taps)
		}
		if got := tc.mode.String(); got != tc.name {
			t.Fatalf("String: got %q want %q", got, tc.name)
		}
	}
}
