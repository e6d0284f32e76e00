package distortion

import (
	"math"
	"testing"
)

func nan() float64 { return math.NaN() }

func TestGainToDecibelsFloor(t *testing.T) {
	tests := []struct {
		gain float64
		want float64
	}{
		{gain: 1, want: 0},
		{gain: 0, want: -100},
		{gain: -1, want: -100},
		{gain: 1e-9, want: -100},
		{gain: 10, want: 20},
	}
	for _, tt := range tests {
		if got := GainToDecibels(tt.gain); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("GainToDecibels(%g) = %f, want %f", tt.gain, got, tt.want)
		}
	}
}

func TestDecibelsToGain(t *testing.T) {
	if got := DecibelsToGain(-100); got != 0 {
		t.Fatalf("DecibelsToGain(-100) = %f, want 0", got)
	}
	if got := DecibelsToGain(-200); got != 0 {
		t.Fatalf("DecibelsToGain(-200) = %f, want 0", got)
	}
	if got := DecibelsToGain(20); math.Abs(got-10) > 1e-9 {
		t.Fatalf("DecibelsToGain(20) = %f, want 10", got)
	}
}

func TestClipThreshold(t *testing.T) {
	thr, db := ClipThreshold(1)
	if thr != 1 || db != 0 {
		t.Fatalf("ClipThreshold(1) = %f, %f; want 1, 0", thr, db)
	}

	thr, db = ClipThreshold(2)
	if math.Abs(thr-0.25) > 1e-12 {
		t.Fatalf("ClipThreshold(2) threshold = %f, want 0.25", thr)
	}
	if math.Abs(db-20*math.Log10(4)) > 1e-12 {
		t.Fatalf("ClipThreshold(2) drive = %f, want %f", db, 20*math.Log10(4))
	}

	for g := 1.0; g <= 2.0; g += 0.05 {
		thr, _ := ClipThreshold(g)
		if thr <= 0 || thr > 1 {
			t.Fatalf("ClipThreshold(%f) = %f outside (0, 1]", g, thr)
		}
	}
}
