package distortion

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-approx"
)

// TanhMode selects the shaper used by the Special mode.
type TanhMode int

const (
	// TanhExact uses math.Tanh.
	TanhExact TanhMode = iota
	// TanhApprox uses an exp-based approximation from algo-approx.
	TanhApprox
)

// ProcessorOption mutates construction-time processor settings.
type ProcessorOption func(*processorConfig) error

type processorConfig struct {
	tanhMode TanhMode
}

// WithTanhMode selects the Special mode shaper.
func WithTanhMode(mode TanhMode) ProcessorOption {
	return func(cfg *processorConfig) error {
		if mode != TanhExact && mode != TanhApprox {
			return fmt.Errorf("tanh mode is invalid: %d", mode)
		}
		cfg.tanhMode = mode
		return nil
	}
}

// Processor applies the volume / clip / waveshape pipeline to audio blocks.
// It keeps no state between blocks; all configuration is read from the
// shared Store at the start of each block.
type Processor struct {
	params   *Store
	tanhMode TanhMode

	sampleRate float64
	blockSize  int
}

// NewProcessor creates a processor reading parameters from params.
func NewProcessor(params *Store, opts ...ProcessorOption) (*Processor, error) {
	if params == nil {
		return nil, fmt.Errorf("nil parameter store")
	}
	cfg := processorConfig{tanhMode: TanhExact}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Processor{
		params:   params,
		tanhMode: cfg.tanhMode,
	}, nil
}

// Params returns the store the processor reads from.
func (p *Processor) Params() *Store {
	return p.params
}

// Prepare records the host's stream settings. Nothing in the pipeline
// depends on them.
func (p *Processor) Prepare(sampleRate float64, blockSize int) {
	p.sampleRate = sampleRate
	p.blockSize = blockSize
}

// SampleRate returns the rate passed to the last Prepare call.
func (p *Processor) SampleRate() float64 {
	return p.sampleRate
}

// BlockSize returns the block size passed to the last Prepare call.
func (p *Processor) BlockSize() int {
	return p.blockSize
}

// blockParams is the per-block view of the store.
type blockParams struct {
	bypass     bool
	special    bool
	inGain     float32
	outGain    float32
	threshold  float64
	invThresh  float64
	driveScale float64
}

func (p *Processor) readBlockParams() blockParams {
	s := p.params
	in := s.Get(InputVolume)
	out := s.Get(OutputVolume)
	threshold, driveDB := ClipThreshold(s.Get(Gain))
	return blockParams{
		bypass:     s.Get(MasterBypass) == 1.0,
		special:    s.Get(Special) == 1.0,
		inGain:     float32(in * in),
		outGain:    float32(out * out * 2.0),
		threshold:  threshold,
		invThresh:  1 / threshold,
		driveScale: driveDB / 2.0,
	}
}

// Process transforms buf in place. buf holds one slice per channel; the
// first numIn channels carry input, channels numIn..numOut-1 are outputs
// with no matching input and are cleared to silence.
//
// Process does not allocate, lock or log.
func (p *Processor) Process(buf [][]float32, numIn int, numOut int) {
	if numOut > len(buf) {
		numOut = len(buf)
	}
	if numIn < 0 {
		numIn = 0
	}
	for ch := numIn; ch < numOut; ch++ {
		clear(buf[ch])
	}

	bp := p.readBlockParams()
	if bp.bypass {
		return
	}

	active := min(numIn, len(buf))
	for ch := 0; ch < active; ch++ {
		if bp.special {
			p.shapeSpecial(buf[ch], bp)
		} else {
			clipChannel(buf[ch], bp)
		}
	}
}

// clipChannel hard-clips at ±threshold and renormalises by 1/threshold.
func clipChannel(data []float32, bp blockParams) {
	thr := bp.threshold
	for i, x := range data {
		v := float64(x * bp.inGain)
		if v >= thr {
			v = thr
		} else if v <= -thr {
			v = -thr
		}
		data[i] = float32(v*bp.invThresh) * bp.outGain
	}
}

// shapeSpecial drives by the gain in dB/2 and soft-clips with tanh(5x/2).
func (p *Processor) shapeSpecial(data []float32, bp blockParams) {
	if p.tanhMode == TanhApprox {
		for i, x := range data {
			v := float32(float64(x*bp.inGain) * bp.driveScale)
			data[i] = fastTanh(5*v/2) * bp.outGain
		}
		return
	}
	for i, x := range data {
		v := float32(float64(x*bp.inGain) * bp.driveScale)
		data[i] = float32(math.Tanh(5*float64(v)/2)) * bp.outGain
	}
}

// fastTanh evaluates tanh(x) = (e^2x - 1) / (e^2x + 1) with a fast exp.
func fastTanh(x float32) float32 {
	const saturate = 9
	if x > saturate {
		return 1
	}
	if x < -saturate {
		return -1
	}
	e := approx.FastExp(2 * x)
	return (e - 1) / (e + 1)
}
