package effects

import (
	"math"
	"testing"
)

func TestLimiterValidation(t *testing.T) {
	if _, err := NewLimiter(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	l, err := NewLimiter(48000)
	if err != nil {
		t.Fatal(err)
	}

	if err := l.SetThreshold(0); err == nil {
		t.Fatal("expected error for zero threshold")
	}

	if err := l.SetAttack(-1); err == nil {
		t.Fatal("expected error for negative attack")
	}

	if err := l.SetRelease(math.NaN()); err == nil {
		t.Fatal("expected error for NaN release")
	}
}

func TestLimiterPassesQuietSignal(t *testing.T) {
	l, err := NewLimiter(48000)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4800; i++ {
		x := 0.5 * math.Sin(2*math.Pi*440*float64(i)/48000)
		if y := l.ProcessSample(x); y != x {
			t.Fatalf("sample %d: got %v want %v", i, y, x)
		}
	}
}

func TestLimiterHoldsLoudSignalNearThreshold(t *testing.T) {
	l, err := NewLimiter(48000)
	if err != nil {
		t.Fatal(err)
	}

	if err := l.SetThreshold(0.5); err != nil {
		t.Fatal(err)
	}

	peak := 0.0

	for i := 0; i < 48000; i++ {
		x := 4 * math.Sin(2*math.Pi*100*float64(i)/48000)
		y := l.ProcessSample(x)

		if i > 4800 {
			peak = math.Max(peak, math.Abs(y))
		}
	}

	if peak > 0.55 {
		t.Fatalf("limited peak: got %v want <= 0.55", peak)
	}

	l.Reset()

	if l.Envelope() != 0 {
		t.Fatal("reset must clear the follower")
	}
}
