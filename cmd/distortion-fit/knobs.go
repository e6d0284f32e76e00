package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-distortion/distortion"
)

type knobDef struct {
	Name string
	ID   distortion.ParamID
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

// fitParams are the continuous parameters searched by the optimizer.
// MasterBypass is pinned off and Special is searched by enumeration.
var fitParams = []distortion.ParamID{
	distortion.InputVolume,
	distortion.Gain,
	distortion.OutputVolume,
}

func knobName(id distortion.ParamID) string {
	switch id {
	case distortion.InputVolume:
		return "input_volume"
	case distortion.Gain:
		return "gain"
	case distortion.OutputVolume:
		return "output_volume"
	}
	return strings.ToLower(distortion.Specs[id].Name)
}

func initCandidate(base distortion.Settings) ([]knobDef, candidate) {
	defs := make([]knobDef, 0, len(fitParams))
	vals := make([]float64, 0, len(fitParams))
	for _, id := range fitParams {
		spec := distortion.Specs[id]
		defs = append(defs, knobDef{Name: knobName(id), ID: id, Min: spec.Min, Max: spec.Max})
		vals = append(vals, clamp(base.Value(id), spec.Min, spec.Max))
	}
	return defs, candidate{Vals: vals}
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func applyCandidate(base distortion.Settings, special float64, defs []knobDef, c candidate) distortion.Settings {
	st := base
	st.MasterBypass = 0
	st.Special = special
	for i, d := range defs {
		if i < len(c.Vals) {
			st.Set(d.ID, c.Vals[i])
		}
	}
	return st
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}

func parseSpecialModes(s string) ([]float64, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return []float64{0, 1}, nil
	case "off", "0":
		return []float64{0}, nil
	case "on", "1":
		return []float64{1}, nil
	default:
		return nil, fmt.Errorf("unsupported special mode %q (want auto, off or on)", s)
	}
}

func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = clamp(v, d.Min, d.Max)
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}
