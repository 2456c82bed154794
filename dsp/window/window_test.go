package window

import (
	"math"
	"testing"
)

func TestGenerateAllTypes(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman} {
		t.Run(Info(typ).Name, func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || v < -1e-12 || v > 1+1e-12 {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}

				// symmetric form mirrors around the centre
				if math.Abs(v-w[len(w)-1-i]) > 1e-12 {
					t.Fatalf("coefficient[%d] not symmetric", i)
				}
			}
		})
	}
}

func TestGenerateInvalidLength(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Fatalf("expected nil, got %v", w)
	}
}

func TestPeriodicHann(t *testing.T) {
	w := Generate(TypeHann, 4, WithPeriodic())
	want := []float64{0, 0.5, 1, 0.5}

	for i := range w {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Fatalf("w[%d]=%v want %v", i, w[i], want[i])
		}
	}
}

func TestCoherentGainMatchesMetadata(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman} {
		got := CoherentGain(Generate(typ, 4096, WithPeriodic()))
		if want := Info(typ).CoherentGain; math.Abs(got-want) > 1e-3 {
			t.Fatalf("%s: got %v want %v", Info(typ).Name, got, want)
		}
	}

	if CoherentGain(nil) != 0 {
		t.Fatal("empty window must have zero gain")
	}
}

func TestApplyCoefficientsInPlace(t *testing.T) {
	buf := []float64{2, 2, 2}
	if !ApplyCoefficientsInPlace(buf, []float64{0, 0.5, 1}) {
		t.Fatal("expected success")
	}

	if buf[0] != 0 || buf[1] != 1 || buf[2] != 2 {
		t.Fatalf("got %v", buf)
	}

	if ApplyCoefficientsInPlace(buf, []float64{1}) {
		t.Fatal("length mismatch must fail")
	}
}
