package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-distortion/analysis"
	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-distortion/preset"
	"github.com/sirupsen/logrus"
)

type sweepReport struct {
	SampleRate int                       `json:"sample_rate"`
	Frequency  float64                   `json:"frequency_hz"`
	Amplitude  float64                   `json:"amplitude"`
	Points     []analysis.HarmonicReport `json:"points"`
}

func main() {
	presetPath := flag.String("preset", "", "Base preset JSON path (optional)")
	steps := flag.Int("steps", 11, "Number of Gain values swept from 1 to 2")
	special := flag.Bool("special", false, "Measure with the Special mode enabled")
	freq := flag.Float64("freq", 1000, "Test tone frequency in Hz")
	amplitude := flag.Float64("amplitude", 0.5, "Test tone peak amplitude")
	sampleRate := flag.Int("sample-rate", 48000, "Test tone sample rate in Hz")
	frames := flag.Int("frames", 16384, "Analysis length in frames (rounded down to a power of two)")
	reportPath := flag.String("report", "", "Optional JSON report path")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	base := distortion.DefaultSettings()
	if *presetPath != "" {
		st, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		base = *st
	}
	base.MasterBypass = 0
	if *special {
		base.Special = 1
	} else {
		base.Special = 0
	}

	cfg := analysis.DefaultToneConfig()
	cfg.SampleRate = *sampleRate
	cfg.Frequency = *freq
	cfg.Amplitude = *amplitude
	cfg.AnalysisFrames = *frames

	points, err := sweep(base, cfg, *steps)
	if err != nil {
		die("sweep failed: %v", err)
	}

	fmt.Printf("%8s %9s %10s %10s %10s %10s\n", "gain", "drive_dB", "thd_dB", "thd+n", "odd", "even")
	for _, p := range points {
		fmt.Printf("%8.3f %9.2f %10.2f %10.5f %10.5f %10.5f\n", p.Settings.Gain, p.GainDB, p.THDdB, p.THDN, p.OddHD, p.EvenHD)
	}

	if *reportPath != "" {
		rep := sweepReport{
			SampleRate: cfg.SampleRate,
			Frequency:  cfg.Frequency,
			Amplitude:  cfg.Amplitude,
			Points:     points,
		}
		if err := writeJSON(*reportPath, rep); err != nil {
			die("failed to write report: %v", err)
		}
		logrus.WithField("path", *reportPath).Info("Wrote report")
	}
}

// sweep measures base at steps evenly spaced Gain values across the
// parameter range.
func sweep(base distortion.Settings, cfg analysis.ToneConfig, steps int) ([]analysis.HarmonicReport, error) {
	if steps < 1 {
		return nil, fmt.Errorf("steps must be >= 1")
	}
	spec := distortion.Specs[distortion.Gain]
	out := make([]analysis.HarmonicReport, 0, steps)
	for i := 0; i < steps; i++ {
		g := spec.Min
		if steps > 1 {
			g += (spec.Max - spec.Min) * float64(i) / float64(steps-1)
		}
		st := base
		st.Gain = g
		rep, err := analysis.MeasureTHD(st, cfg)
		if err != nil {
			return nil, fmt.Errorf("gain %.3f: %w", g, err)
		}
		logrus.WithFields(logrus.Fields{
			"gain":   g,
			"thd_db": rep.THDdB,
		}).Debug("Measured")
		out = append(out, rep)
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

func die(format string, args ...any) {
	logrus.Errorf(format, args...)
	os.Exit(1)
}
