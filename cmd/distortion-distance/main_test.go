package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-distortion/internal/wavio"
	"github.com/cwbudde/algo-distortion/preset"
)

func writeSine(t *testing.T, path string, amp float64) {
	t.Helper()
	ch := make([]float32, 4800)
	for i := range ch {
		ch[i] = float32(amp * math.Sin(2*math.Pi*440*float64(i)/48000))
	}
	if err := wavio.Write(path, &wavio.Audio{SampleRate: 48000, Channels: [][]float32{ch, append([]float32(nil), ch...)}}, 24); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRenderCandidateAppliesPreset(t *testing.T) {
	dir := t.TempDir()
	dry := filepath.Join(dir, "dry.wav")
	writeSine(t, dry, 0.25)

	presetPath := filepath.Join(dir, "mute.json")
	st := distortion.DefaultSettings()
	st.OutputVolume = 0
	if err := preset.SaveJSON(presetPath, "mute", st); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	wet, err := renderCandidate(dry, presetPath)
	if err != nil {
		t.Fatalf("renderCandidate: %v", err)
	}
	if wet.NumChannels() != 2 || wet.Frames() != 4800 {
		t.Fatalf("got %d ch x %d frames", wet.NumChannels(), wet.Frames())
	}
	for _, ch := range wet.Channels {
		for i, v := range ch {
			if v != 0 {
				t.Fatalf("sample %d = %f, want 0 with OutputVolume 0", i, v)
			}
		}
	}
}

func TestReadMonoMatchesItself(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.wav")
	writeSine(t, path, 0.5)
	a, err := readMono(path, 48000)
	if err != nil {
		t.Fatalf("readMono: %v", err)
	}
	if len(a) != 4800 {
		t.Fatalf("len = %d, want 4800", len(a))
	}
}

func TestRenderCandidateMissingPreset(t *testing.T) {
	dir := t.TempDir()
	dry := filepath.Join(dir, "dry.wav")
	writeSine(t, dry, 0.25)
	if _, err := renderCandidate(dry, filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing preset")
	}
}
