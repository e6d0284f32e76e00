package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-distortion/internal/wavio"
	"github.com/cwbudde/algo-distortion/preset"
	"github.com/sirupsen/logrus"
)

func main() {
	input := flag.String("input", "", "Input WAV path (default: generated sine)")
	sineFreq := flag.Float64("sine-freq", 220.0, "Sine frequency in Hz when no -input is given")
	duration := flag.Float64("duration", 2.0, "Sine duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Sine sample rate in Hz")
	amplitude := flag.Float64("amplitude", 0.5, "Sine peak amplitude")
	channels := flag.Int("channels", 2, "Sine channel count (1 or 2)")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	bypass := flag.Float64("bypass", 0, "MasterBypass override (0 or 1)")
	inputVolume := flag.Float64("input-volume", 1, "InputVolume override (0..1.5)")
	gain := flag.Float64("gain", 1, "Gain override (1..2)")
	outputVolume := flag.Float64("output-volume", 1, "OutputVolume override (0..1.5)")
	special := flag.Float64("special", 0, "Special override (0 or 1)")
	tanhMode := flag.String("tanh", "exact", "Special mode shaper: exact|approx")
	blockSize := flag.Int("block-size", distortion.DefaultBlockSize, "Processing block size in frames")
	bitDepth := flag.Int("bit-depth", 16, "Output bit depth (16 or 24)")
	outRate := flag.Int("output-rate", 0, "Resample the output to this rate in Hz (0 = keep input rate)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	settings := distortion.DefaultSettings()
	if *presetPath != "" {
		st, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset %q: %v", *presetPath, err)
		}
		settings = *st
	}

	// Explicit flags win over the preset.
	overrides := map[string]struct {
		id  distortion.ParamID
		val *float64
	}{
		"bypass":        {distortion.MasterBypass, bypass},
		"input-volume":  {distortion.InputVolume, inputVolume},
		"gain":          {distortion.Gain, gain},
		"output-volume": {distortion.OutputVolume, outputVolume},
		"special":       {distortion.Special, special},
	}
	flag.Visit(func(f *flag.Flag) {
		if o, ok := overrides[f.Name]; ok {
			settings.Set(o.id, *o.val)
		}
	})

	mode, err := parseTanhMode(*tanhMode)
	if err != nil {
		die("%v", err)
	}
	fx, err := distortion.NewEffect(distortion.WithTanhMode(mode))
	if err != nil {
		die("failed to create effect: %v", err)
	}
	fx.Params().Apply(settings)

	var src *wavio.Audio
	if *input != "" {
		src, err = wavio.Read(*input)
		if err != nil {
			die("failed to read input %q: %v", *input, err)
		}
	} else {
		src, err = sine(*sineFreq, *duration, *sampleRate, *amplitude, *channels)
		if err != nil {
			die("failed to generate sine: %v", err)
		}
	}
	if !fx.SupportsLayout(src.NumChannels(), src.NumChannels()) {
		die("unsupported channel layout: %d channels", src.NumChannels())
	}

	store := fx.Params()
	fields := logrus.Fields{
		"frames":      src.Frames(),
		"channels":    src.NumChannels(),
		"sample_rate": src.SampleRate,
		"tanh":        *tanhMode,
	}
	for id := distortion.ParamID(0); id < distortion.NumParams; id++ {
		fields[strings.ToLower(store.Name(id))] = store.Get(id)
	}
	logrus.WithFields(fields).Info("Rendering")

	start := time.Now()
	if err := distortion.ProcessOffline(fx, src.Channels, float64(src.SampleRate), *blockSize); err != nil {
		die("processing failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"elapsed": time.Since(start).String(),
		"peak":    peak(src.Channels),
	}).Debug("Processing completed")

	if *outRate > 0 && *outRate != src.SampleRate {
		src, err = wavio.ResampleAudio(src, *outRate)
		if err != nil {
			die("failed to resample output: %v", err)
		}
	}
	if err := wavio.Write(*output, src, *bitDepth); err != nil {
		die("failed to write %q: %v", *output, err)
	}
	logrus.WithFields(logrus.Fields{
		"output":    *output,
		"bit_depth": *bitDepth,
		"rate":      src.SampleRate,
	}).Info("Wrote output")
}

func parseTanhMode(s string) (distortion.TanhMode, error) {
	switch strings.ToLower(s) {
	case "exact", "":
		return distortion.TanhExact, nil
	case "approx":
		return distortion.TanhApprox, nil
	default:
		return 0, fmt.Errorf("unsupported tanh mode %q (want exact or approx)", s)
	}
}

func sine(freq, duration float64, sampleRate int, amplitude float64, channels int) (*wavio.Audio, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample-rate must be > 0")
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("channels must be 1 or 2, got %d", channels)
	}
	frames := int(float64(sampleRate) * duration)
	if frames < 1 {
		frames = 1
	}
	mono := make([]float32, frames)
	w := 2 * math.Pi * freq / float64(sampleRate)
	for i := range mono {
		mono[i] = float32(amplitude * math.Sin(w*float64(i)))
	}
	out := &wavio.Audio{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	out.Channels[0] = mono
	for ch := 1; ch < channels; ch++ {
		out.Channels[ch] = append([]float32(nil), mono...)
	}
	return out, nil
}

func peak(channels [][]float32) float64 {
	var p float64
	for _, ch := range channels {
		for _, s := range ch {
			if a := math.Abs(float64(s)); a > p {
				p = a
			}
		}
	}
	return p
}

func die(format string, args ...any) {
	logrus.Errorf(format, args...)
	os.Exit(1)
}
