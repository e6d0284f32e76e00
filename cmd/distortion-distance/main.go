package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-distortion/analysis"
	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-distortion/internal/wavio"
	"github.com/cwbudde/algo-distortion/preset"
	"github.com/sirupsen/logrus"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render -dry through -preset")
	dryPath := flag.String("dry", "", "Dry WAV rendered through the effect when no -candidate is given")
	presetPath := flag.String("preset", "", "Preset JSON path for the rendered candidate (default: parameter defaults)")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" {
		die("-reference is required")
	}
	ref, err := readMono(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = readMono(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		if *dryPath == "" {
			die("either -candidate or -dry is required")
		}
		wet, err := renderCandidate(*dryPath, *presetPath)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		if *writeCandidate != "" {
			if err := wavio.Write(*writeCandidate, wet, 16); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
		cand, err = wavio.Resample(wavio.MixDown(wet), wet.SampleRate, *sampleRate)
		if err != nil {
			die("failed to resample candidate: %v", err)
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Println()
	fmt.Printf("Time RMSE:        %.6f\n", metrics.TimeRMSE)
	fmt.Printf("Level diff:       %.2f dB\n", metrics.LevelDiffDB)
	fmt.Printf("Peak diff:        %.2f dB\n", metrics.PeakDiffDB)
	fmt.Printf("Spectral RMSE:    %.2f dB\n", metrics.SpectralRMSEDB)
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
}

func readMono(path string, sampleRate int) ([]float64, error) {
	a, err := wavio.Read(path)
	if err != nil {
		return nil, err
	}
	return wavio.Resample(wavio.MixDown(a), a.SampleRate, sampleRate)
}

func renderCandidate(dryPath, presetPath string) (*wavio.Audio, error) {
	st := distortion.DefaultSettings()
	if presetPath != "" {
		loaded, err := preset.LoadJSON(presetPath)
		if err != nil {
			return nil, err
		}
		st = *loaded
	}
	dry, err := wavio.Read(dryPath)
	if err != nil {
		return nil, err
	}
	fx, err := distortion.NewEffect()
	if err != nil {
		return nil, err
	}
	if !fx.SupportsLayout(dry.NumChannels(), dry.NumChannels()) {
		return nil, fmt.Errorf("unsupported channel layout: %d channels", dry.NumChannels())
	}
	fx.Params().Apply(st)
	if err := distortion.ProcessOffline(fx, dry.Channels, float64(dry.SampleRate), distortion.DefaultBlockSize); err != nil {
		return nil, err
	}
	return dry, nil
}

func die(format string, args ...any) {
	logrus.Errorf(format, args...)
	os.Exit(1)
}
