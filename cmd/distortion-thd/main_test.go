package main

import (
	"testing"

	"github.com/cwbudde/algo-distortion/analysis"
	"github.com/cwbudde/algo-distortion/distortion"
)

func TestSweepCoversGainRange(t *testing.T) {
	cfg := analysis.DefaultToneConfig()
	cfg.AnalysisFrames = 4096
	points, err := sweep(distortion.DefaultSettings(), cfg, 3)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	want := []float64{1, 1.5, 2}
	for i, p := range points {
		if p.Settings.Gain != want[i] {
			t.Fatalf("point %d gain = %f, want %f", i, p.Settings.Gain, want[i])
		}
	}
	if points[2].THD <= points[0].THD {
		t.Fatalf("THD should rise with gain: %f -> %f", points[0].THD, points[2].THD)
	}
}

func TestSweepRejectsZeroSteps(t *testing.T) {
	if _, err := sweep(distortion.DefaultSettings(), analysis.DefaultToneConfig(), 0); err == nil {
		t.Fatalf("expected error")
	}
}
