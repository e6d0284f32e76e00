package analysis

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/cwbudde/algo-dsp/dsp/window"
	"github.com/cwbudde/algo-dsp/measure/thd"
)

// ToneConfig describes the sine test signal used for harmonic measurement.
type ToneConfig struct {
	SampleRate int
	Frequency  float64
	Amplitude  float64
	// AnalysisFrames is rounded down to a power of two.
	AnalysisFrames int
	BlockSize      int
}

// DefaultToneConfig returns a 1 kHz, -6 dBFS tone at 48 kHz.
func DefaultToneConfig() ToneConfig {
	return ToneConfig{
		SampleRate:     48000,
		Frequency:      1000,
		Amplitude:      0.5,
		AnalysisFrames: 16384,
		BlockSize:      distortion.DefaultBlockSize,
	}
}

// HarmonicReport is the result of MeasureTHD.
type HarmonicReport struct {
	Settings        distortion.Settings `json:"settings"`
	GainDB          float64             `json:"gain_db"`
	FundamentalFreq float64             `json:"fundamental_hz"`
	THD             float64             `json:"thd"`
	THDN            float64             `json:"thd_n"`
	THDdB           float64             `json:"thd_db"`
	OddHD           float64             `json:"odd_hd"`
	EvenHD          float64             `json:"even_hd"`
	PeakOutput      float64             `json:"peak_output"`
	RMSOutput       float64             `json:"rms_output"`
}

// MeasureTHD renders a sine tone through a fresh effect configured with st
// and measures the harmonic distortion of the output.
func MeasureTHD(st distortion.Settings, cfg ToneConfig) (HarmonicReport, error) {
	if cfg.SampleRate <= 0 {
		return HarmonicReport{}, fmt.Errorf("sample rate must be > 0")
	}
	if cfg.Frequency <= 0 || cfg.Frequency >= float64(cfg.SampleRate)/2 {
		return HarmonicReport{}, fmt.Errorf("frequency must be in (0, %d)", cfg.SampleRate/2)
	}
	frames := floorPow2(cfg.AnalysisFrames)
	if frames < 1024 {
		return HarmonicReport{}, fmt.Errorf("analysis frames must be >= 1024")
	}

	fx, err := distortion.NewEffect()
	if err != nil {
		return HarmonicReport{}, err
	}
	fx.Params().Apply(st)

	// Render one extra block of lead-in so the analysed window starts mid-tone.
	lead := max(cfg.BlockSize, distortion.DefaultBlockSize)
	tone := make([]float32, lead+frames)
	w := 2 * math.Pi * cfg.Frequency / float64(cfg.SampleRate)
	for i := range tone {
		tone[i] = float32(cfg.Amplitude * math.Sin(w*float64(i)))
	}
	if err := distortion.ProcessOffline(fx, [][]float32{tone}, float64(cfg.SampleRate), cfg.BlockSize); err != nil {
		return HarmonicReport{}, err
	}

	signal := make([]float64, frames)
	for i := range signal {
		signal[i] = float64(tone[lead+i])
	}

	res := thd.AnalyzeSignal(signal, thd.Config{
		SampleRate:      float64(cfg.SampleRate),
		FFTSize:         frames,
		FundamentalFreq: cfg.Frequency,
		RangeLowerFreq:  20,
		RangeUpperFreq:  float64(cfg.SampleRate) / 2,
		WindowType:      window.TypeBlackmanHarris4Term,
	})

	_, driveDB := distortion.ClipThreshold(st.Gain)
	return HarmonicReport{
		Settings:        st,
		GainDB:          driveDB,
		FundamentalFreq: res.FundamentalFreq,
		THD:             res.THD,
		THDN:            res.THDN,
		THDdB:           res.THD_dB,
		OddHD:           res.OddHD,
		EvenHD:          res.EvenHD,
		PeakOutput:      peakAbs(signal),
		RMSOutput:       rms1(signal),
	}, nil
}

func floorPow2(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func peakAbs(x []float64) float64 {
	var peak float64
	for _, v := range x {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}
