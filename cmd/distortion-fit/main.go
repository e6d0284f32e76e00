package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-distortion/internal/wavio"
	"github.com/cwbudde/algo-distortion/preset"
	"github.com/sirupsen/logrus"
)

func main() {
	dryPath := flag.String("dry", "", "Unprocessed input WAV path")
	wetPath := flag.String("wet", "", "Target (distorted) WAV path to match")
	presetPath := flag.String("preset", "", "Base preset JSON path (optional)")
	outputPreset := flag.String("output-preset", "presets/fitted.json", "Path to write best fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	maxSeconds := flag.Float64("max-seconds", 4.0, "Only fit the first N seconds of audio (0 = all)")
	specialMode := flag.String("special", "auto", "Special mode search: auto|off|on")
	tanhMode := flag.String("tanh", "exact", "Special mode shaper: exact|approx")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 30.0, "Optimization time budget in seconds (split across special modes)")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations per special mode")
	reportEvery := flag.Int("report-every", 50, "Log progress every N evaluations")
	workers := flag.Int("workers", 0, "Parallel optimization workers (0 = GOMAXPROCS)")
	writeBest := flag.String("write-best-candidate", "", "Optional WAV path to write the best candidate render")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 8, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 160, "Target eval budget per Mayfly round")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if *dryPath == "" || *wetPath == "" {
		die("both -dry and -wet are required")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}

	modes, err := parseSpecialModes(*specialMode)
	if err != nil {
		die("%v", err)
	}
	shaper := distortion.TanhExact
	if strings.EqualFold(*tanhMode, "approx") {
		shaper = distortion.TanhApprox
	} else if !strings.EqualFold(*tanhMode, "exact") {
		die("unsupported tanh mode %q", *tanhMode)
	}

	base := distortion.DefaultSettings()
	if *presetPath != "" {
		st, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		base = *st
	}

	dry, ref, err := loadPair(*dryPath, *wetPath, *maxSeconds)
	if err != nil {
		die("%v", err)
	}
	logrus.WithFields(logrus.Fields{
		"frames":      dry.Frames(),
		"channels":    dry.NumChannels(),
		"sample_rate": dry.SampleRate,
		"modes":       modes,
	}).Info("Loaded audio")

	defs, initCand := initCandidate(base)
	if *resume {
		resumePath := *reportPath
		if resumePath == "" {
			resumePath = *outputPreset + ".report.json"
		}
		if resumed, ok, err := loadCandidateFromReport(resumePath, defs, initCand); err != nil {
			logrus.WithError(err).WithField("path", resumePath).Warn("Resume skipped")
		} else if ok {
			initCand = resumed
			logrus.WithField("path", resumePath).Info("Resumed candidate")
		}
	}

	var best *fitOutcome
	modeScores := make(map[string]float64, len(modes))
	totalEvals := 0
	totalElapsed := 0.0
	for i, special := range modes {
		res, err := runOptimization(&optimizationConfig{
			dry:              dry,
			reference:        ref,
			base:             base,
			special:          special,
			tanhMode:         shaper,
			defs:             defs,
			initCandidate:    initCand,
			seed:             *seed + int64(i)*104729,
			timeBudget:       *timeBudget / float64(len(modes)),
			maxEvals:         *maxEvals,
			reportEvery:      *reportEvery,
			mayflyVariant:    *mayflyVariant,
			mayflyPop:        *mayflyPop,
			mayflyRoundEvals: *mayflyRoundEvals,
			workers:          *workers,
		})
		if err != nil {
			die("optimization failed: %v", err)
		}
		totalEvals += res.evals
		totalElapsed += res.elapsed
		modeScores[fmt.Sprintf("special=%g", special)] = res.bestMetrics.Score
		if best == nil || res.bestMetrics.Score < best.result.bestMetrics.Score {
			best = &fitOutcome{special: special, result: res}
		}
	}

	rep := runReport{
		DryPath:       *dryPath,
		WetPath:       *wetPath,
		PresetPath:    *presetPath,
		SampleRate:    dry.SampleRate,
		DurationSec:   totalElapsed,
		Evaluations:   totalEvals,
		MayflyVariant: strings.ToLower(*mayflyVariant),
		ModeScores:    modeScores,
	}
	if err := writeOutputs(*outputPreset, *reportPath, rep, base, defs, *best); err != nil {
		die("failed to write outputs: %v", err)
	}
	if *writeBest != "" {
		st := applyCandidate(base, best.special, defs, best.result.best)
		if err := writeBestCandidate(*writeBest, dry, st, shaper); err != nil {
			logrus.WithError(err).Warn("Failed to write best candidate wav")
		}
	}

	logrus.WithFields(logrus.Fields{
		"evals":      totalEvals,
		"elapsed":    totalElapsed,
		"score":      best.result.bestMetrics.Score,
		"similarity": best.result.bestMetrics.Similarity,
		"special":    best.special,
		"preset":     *outputPreset,
	}).Info("Done")
}

// loadPair reads the dry input and the wet target, bringing the target to
// the dry sample rate and truncating both to maxSeconds.
func loadPair(dryPath, wetPath string, maxSeconds float64) (*wavio.Audio, []float64, error) {
	dry, err := wavio.Read(dryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dry input: %w", err)
	}
	wet, err := wavio.Read(wetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read wet target: %w", err)
	}
	ref := wavio.MixDown(wet)
	if wet.SampleRate != dry.SampleRate {
		ref, err = wavio.Resample(ref, wet.SampleRate, dry.SampleRate)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resample wet target: %w", err)
		}
	}
	if maxSeconds > 0 {
		limit := int(maxSeconds * float64(dry.SampleRate))
		dry = truncate(dry, limit)
		if len(ref) > limit {
			ref = ref[:limit]
		}
	}
	return dry, ref, nil
}

func truncate(a *wavio.Audio, frames int) *wavio.Audio {
	if frames <= 0 || a.Frames() <= frames {
		return a
	}
	out := &wavio.Audio{SampleRate: a.SampleRate, Channels: make([][]float32, len(a.Channels))}
	for i, ch := range a.Channels {
		out.Channels[i] = ch[:frames]
	}
	return out
}
