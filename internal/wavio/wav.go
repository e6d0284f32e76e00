// Package wavio reads and writes planar multichannel WAV audio.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// Audio is planar float audio: one slice per channel, all the same length.
type Audio struct {
	Channels   [][]float32
	SampleRate int
}

// Frames returns the per-channel sample count.
func (a *Audio) Frames() int {
	if a == nil || len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// NumChannels returns the channel count.
func (a *Audio) NumChannels() int {
	if a == nil {
		return 0
	}
	return len(a.Channels)
}

// Read decodes a WAV file into planar channels.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}

	return &Audio{
		Channels:   Deinterleave(buf.Data, buf.Format.NumChannels),
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// Write encodes planar channels as PCM WAV at the given bit depth (16 or 24).
func Write(path string, a *Audio, bitDepth int) error {
	if a == nil || len(a.Channels) == 0 {
		return fmt.Errorf("no audio to write")
	}
	if a.SampleRate <= 0 {
		return fmt.Errorf("invalid sample-rate: %d", a.SampleRate)
	}
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported bit depth %d (want 16 or 24)", bitDepth)
	}
	data, err := Interleave(a.Channels)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	numCh := len(a.Channels)
	enc := wav.NewEncoder(f, a.SampleRate, bitDepth, numCh, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  a.SampleRate,
			NumChannels: numCh,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Interleave packs planar channels into frame order.
func Interleave(channels [][]float32) ([]float32, error) {
	if len(channels) == 0 {
		return nil, nil
	}
	frames := len(channels[0])
	for ch := range channels {
		if len(channels[ch]) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, want %d", ch, len(channels[ch]), frames)
		}
	}
	numCh := len(channels)
	out := make([]float32, frames*numCh)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numCh; ch++ {
			out[i*numCh+ch] = channels[ch][i]
		}
	}
	return out, nil
}

// Deinterleave splits frame-ordered samples into numCh planar channels.
// A trailing partial frame is dropped.
func Deinterleave(data []float32, numCh int) [][]float32 {
	if numCh < 1 {
		return nil
	}
	frames := len(data) / numCh
	out := make([][]float32, numCh)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numCh; ch++ {
			out[ch][i] = data[i*numCh+ch]
		}
	}
	return out
}

// MixDown averages all channels into a mono float64 signal.
func MixDown(a *Audio) []float64 {
	frames := a.Frames()
	out := make([]float64, frames)
	if frames == 0 {
		return out
	}
	scale := 1.0 / float64(len(a.Channels))
	for _, ch := range a.Channels {
		for i, v := range ch {
			out[i] += float64(v)
		}
	}
	for i := range out {
		out[i] *= scale
	}
	return out
}

// Resample converts a mono signal between sample rates.
func Resample(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates %d -> %d", fromRate, toRate)
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// ResampleAudio converts every channel of a to toRate.
func ResampleAudio(a *Audio, toRate int) (*Audio, error) {
	if a.SampleRate == toRate {
		return a, nil
	}
	out := &Audio{SampleRate: toRate, Channels: make([][]float32, len(a.Channels))}
	for ch, data := range a.Channels {
		in := make([]float64, len(data))
		for i, v := range data {
			in[i] = float64(v)
		}
		res, err := Resample(in, a.SampleRate, toRate)
		if err != nil {
			return nil, fmt.Errorf("resample channel %d: %w", ch, err)
		}
		out.Channels[ch] = make([]float32, len(res))
		for i, v := range res {
			out.Channels[ch][i] = float32(v)
		}
	}
	return out, nil
}
