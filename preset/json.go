package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-distortion/distortion"
)

// File is the JSON schema for distortion presets. Omitted fields keep
// their default value.
type File struct {
	Name         string   `json:"name,omitempty"`
	MasterBypass *float64 `json:"master_bypass,omitempty"`
	InputVolume  *float64 `json:"input_volume,omitempty"`
	Gain         *float64 `json:"gain,omitempty"`
	OutputVolume *float64 `json:"output_volume,omitempty"`
	Special      *float64 `json:"special,omitempty"`
}

// LoadJSON loads a preset JSON file and applies it on top of default settings.
func LoadJSON(path string) (*distortion.Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}

	st := distortion.DefaultSettings()
	if err := ApplyFile(&st, &f); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return &st, nil
}

// ApplyFile validates f and copies its fields onto dst. Nothing is written
// when any field is out of range.
func ApplyFile(dst *distortion.Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	fields := []struct {
		key string
		id  distortion.ParamID
		v   *float64
	}{
		{key: "master_bypass", id: distortion.MasterBypass, v: f.MasterBypass},
		{key: "input_volume", id: distortion.InputVolume, v: f.InputVolume},
		{key: "gain", id: distortion.Gain, v: f.Gain},
		{key: "output_volume", id: distortion.OutputVolume, v: f.OutputVolume},
		{key: "special", id: distortion.Special, v: f.Special},
	}

	for _, fd := range fields {
		if fd.v == nil {
			continue
		}
		spec := distortion.Specs[fd.id]
		v := *fd.v
		if math.IsNaN(v) || v < spec.Min || v > spec.Max {
			return fmt.Errorf("%s must be in [%g, %g]", fd.key, spec.Min, spec.Max)
		}
	}

	for _, fd := range fields {
		if fd.v != nil {
			dst.Set(fd.id, *fd.v)
		}
	}
	return nil
}

// FromSettings builds a fully populated preset file.
func FromSettings(name string, st distortion.Settings) *File {
	f := &File{Name: name}
	f.MasterBypass = ptr(st.MasterBypass)
	f.InputVolume = ptr(st.InputVolume)
	f.Gain = ptr(st.Gain)
	f.OutputVolume = ptr(st.OutputVolume)
	f.Special = ptr(st.Special)
	return f
}

// SaveJSON writes st as an indented preset file, creating parent directories.
func SaveJSON(path string, name string, st distortion.Settings) error {
	b, err := json.MarshalIndent(FromSettings(name, st), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func ptr(v float64) *float64 {
	return &v
}
