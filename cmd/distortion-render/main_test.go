package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-distortion/distortion"
)

func TestParseTanhMode(t *testing.T) {
	cases := map[string]distortion.TanhMode{
		"":       distortion.TanhExact,
		"exact":  distortion.TanhExact,
		"APPROX": distortion.TanhApprox,
	}
	for in, want := range cases {
		got, err := parseTanhMode(in)
		if err != nil {
			t.Fatalf("parseTanhMode(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("parseTanhMode(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseTanhMode("cubic"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSineShape(t *testing.T) {
	a, err := sine(1000, 0.01, 48000, 0.5, 2)
	if err != nil {
		t.Fatalf("sine error: %v", err)
	}
	if a.NumChannels() != 2 || a.Frames() != 480 {
		t.Fatalf("got %d ch x %d frames, want 2 x 480", a.NumChannels(), a.Frames())
	}
	if &a.Channels[0][0] == &a.Channels[1][0] {
		t.Fatalf("channels share backing storage")
	}
	if p := peak(a.Channels); math.Abs(p-0.5) > 1e-3 {
		t.Fatalf("peak = %f, want ~0.5", p)
	}
}

func TestSineRejectsBadLayout(t *testing.T) {
	if _, err := sine(440, 1, 48000, 0.5, 3); err == nil {
		t.Fatalf("expected error for 3 channels")
	}
	if _, err := sine(440, 1, 0, 0.5, 1); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}
