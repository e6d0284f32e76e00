package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestInterleaveDeinterleave(t *testing.T) {
	planar := [][]float32{{1, 2, 3}, {-1, -2, -3}}
	inter, err := Interleave(planar)
	if err != nil {
		t.Fatalf("Interleave: %v", err)
	}
	want := []float32{1, -1, 2, -2, 3, -3}
	for i := range want {
		if inter[i] != want[i] {
			t.Fatalf("interleaved[%d] = %f, want %f", i, inter[i], want[i])
		}
	}
	back := Deinterleave(inter, 2)
	for ch := range planar {
		for i := range planar[ch] {
			if back[ch][i] != planar[ch][i] {
				t.Fatalf("ch %d frame %d = %f, want %f", ch, i, back[ch][i], planar[ch][i])
			}
		}
	}
}

func TestInterleaveRejectsRaggedChannels(t *testing.T) {
	if _, err := Interleave([][]float32{{1, 2}, {1}}); err == nil {
		t.Fatalf("expected error for ragged channels")
	}
}

func TestMixDown(t *testing.T) {
	a := &Audio{Channels: [][]float32{{1, 0.5}, {0, -0.5}}, SampleRate: 8000}
	got := MixDown(a)
	if got[0] != 0.5 || got[1] != 0 {
		t.Fatalf("MixDown = %v", got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	const sr = 48000
	frames := 480
	a := &Audio{SampleRate: sr, Channels: [][]float32{make([]float32, frames), make([]float32, frames)}}
	for i := 0; i < frames; i++ {
		a.Channels[0][i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/sr))
		a.Channels[1][i] = -a.Channels[0][i]
	}

	path := filepath.Join(t.TempDir(), "out", "tone.wav")
	if err := Write(path, a, 16); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.SampleRate != sr || got.NumChannels() != 2 || got.Frames() != frames {
		t.Fatalf("format mismatch: sr=%d ch=%d frames=%d", got.SampleRate, got.NumChannels(), got.Frames())
	}
	for ch := range a.Channels {
		for i := range a.Channels[ch] {
			if d := math.Abs(float64(got.Channels[ch][i] - a.Channels[ch][i])); d > 2.0/32768 {
				t.Fatalf("ch %d frame %d: got %f want %f", ch, i, got.Channels[ch][i], a.Channels[ch][i])
			}
		}
	}
}

func TestWriteRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	if err := Write(filepath.Join(dir, "a.wav"), &Audio{SampleRate: 48000}, 16); err == nil {
		t.Fatalf("expected error for empty audio")
	}
	a := &Audio{SampleRate: 48000, Channels: [][]float32{{0}}}
	if err := Write(filepath.Join(dir, "b.wav"), a, 12); err == nil {
		t.Fatalf("expected error for 12-bit")
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := Resample(in, 44100, 44100)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if &out[0] != &in[0] {
		t.Fatalf("expected input slice to be returned unchanged")
	}
}

func TestResampleChangesLength(t *testing.T) {
	in := make([]float64, 4800)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 48000)
	}
	out, err := Resample(in, 48000, 24000)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if n := len(out); n < 2300 || n > 2500 {
		t.Fatalf("resampled length = %d, want ~2400", n)
	}
}
