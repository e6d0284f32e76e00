package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-distortion/analysis"
	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-distortion/internal/wavio"
	"github.com/cwbudde/algo-distortion/preset"
)

type runReport struct {
	DryPath        string             `json:"dry_path"`
	WetPath        string             `json:"wet_path"`
	PresetPath     string             `json:"preset_path,omitempty"`
	OutputPreset   string             `json:"output_preset"`
	SampleRate     int                `json:"sample_rate"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	Special        float64            `json:"special"`
	ModeScores     map[string]float64 `json:"mode_scores,omitempty"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
}

type fitOutcome struct {
	special float64
	result  *optimizationResult
}

func writeOutputs(
	outputPreset string,
	reportPath string,
	rep runReport,
	base distortion.Settings,
	defs []knobDef,
	best fitOutcome,
) error {
	st := applyCandidate(base, best.special, defs, best.result.best)
	name := filepath.Base(outputPreset)
	name = name[:len(name)-len(filepath.Ext(name))]
	if err := preset.SaveJSON(outputPreset, name, st); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(defs))
	for i, d := range defs {
		knobs[d.Name] = best.result.best.Vals[i]
	}
	rep.OutputPreset = outputPreset
	rep.Special = best.special
	rep.BestScore = best.result.bestMetrics.Score
	rep.BestSimilarity = best.result.bestMetrics.Similarity
	rep.BestMetrics = best.result.bestMetrics
	rep.BestKnobs = knobs

	if reportPath == "" {
		reportPath = outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writeBestCandidate(path string, dry *wavio.Audio, st distortion.Settings, mode distortion.TanhMode) error {
	_, wet, err := renderCandidate(dry, st, mode)
	if err != nil {
		return err
	}
	return wavio.Write(path, wet, 16)
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
