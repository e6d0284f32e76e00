package analysis

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	stftSize = 2048
	stftHop  = 1024
)

// Metrics contains distance measurements between a reference render and a
// candidate render of the same input. Level differences count: both
// signals are compared as-is, without normalisation.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`

	TimeRMSE       float64 `json:"time_rmse"`
	LevelDiffDB    float64 `json:"level_diff_db"`
	PeakDiffDB     float64 `json:"peak_diff_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in [0,1]
// (0 = identical).
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	n := min(len(reference), len(candidate))
	if sampleRate <= 0 || n < 64 {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}
	ref := reference[:n]
	cand := candidate[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(ref, cand)
	m.LevelDiffDB = math.Abs(linToDB(rms1(ref)) - linToDB(rms1(cand)))
	m.PeakDiffDB = math.Abs(linToDB(vecmath.MaxAbs(ref)) - linToDB(vecmath.MaxAbs(cand)))
	m.SpectralRMSEDB = spectralRMSEDB(ref, cand)

	timeNorm := clamp01(m.TimeRMSE / 0.5)
	levelNorm := clamp01(m.LevelDiffDB / 24.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	m.Score = clamp01(0.40*timeNorm + 0.20*levelNorm + 0.40*specNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

// spectralRMSEDB averages Hann-windowed STFT magnitudes of both signals and
// returns the RMS of their per-bin dB difference.
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	size := stftSize
	for size > 256 && size > n {
		size /= 2
	}
	if n < size {
		return 0
	}

	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return 0
	}
	win := window.Generate(window.TypeHann, size)
	bins := size/2 + 1

	avgA := make([]float64, bins)
	avgB := make([]float64, bins)
	frameBuf := make([]float64, size)
	spec := make([]complex128, bins)
	re := make([]float64, bins)
	im := make([]float64, bins)
	mag := make([]float64, bins)

	accumulate := func(dst []float64, src []float64) {
		vecmath.MulBlock(frameBuf, src, win)
		plan.Forward(spec, frameBuf)
		for k, c := range spec {
			re[k] = real(c)
			im[k] = imag(c)
		}
		vecmath.Magnitude(mag, re, im)
		vecmath.AddBlockInPlace(dst, mag)
	}

	frames := 0
	for pos := 0; pos+size <= n; pos += stftHop {
		accumulate(avgA, a[pos:pos+size])
		accumulate(avgB, b[pos:pos+size])
		frames++
	}
	if frames == 0 {
		return 0
	}

	var sum float64
	for k := 1; k < bins-1; k++ {
		d := linToDB(avgA[k]/float64(frames)) - linToDB(avgB[k]/float64(frames))
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-2))
}

func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(vecmath.DotProduct(x, x) / float64(len(x)))
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
