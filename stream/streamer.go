// Package stream runs the distortion effect inside a beep streaming pipeline.
package stream

import (
	"fmt"

	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/gopxl/beep/v2"
)

// Streamer is a beep.Streamer wrapper that distorts the stereo frames of
// its source. Scratch buffers are sized once, so Stream does not allocate.
type Streamer struct {
	src       beep.Streamer
	fx        distortion.Plugin
	blockSize int
	planar    [][]float32
	view      [][]float32
}

// New wraps src. Frames are handed to fx in blocks of at most blockSize.
func New(src beep.Streamer, fx distortion.Plugin, format beep.Format, blockSize int) (*Streamer, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source streamer")
	}
	if fx == nil {
		return nil, fmt.Errorf("nil effect")
	}
	if blockSize <= 0 {
		blockSize = distortion.DefaultBlockSize
	}
	fx.Prepare(float64(format.SampleRate), blockSize)
	return &Streamer{
		src:       src,
		fx:        fx,
		blockSize: blockSize,
		planar:    [][]float32{make([]float32, blockSize), make([]float32, blockSize)},
		view:      make([][]float32, 2),
	}, nil
}

// Stream pulls samples from the source and distorts them in place.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := s.src.Stream(samples)
	for start := 0; start < n; start += s.blockSize {
		end := min(start+s.blockSize, n)
		frames := end - start
		left := s.planar[0][:frames]
		right := s.planar[1][:frames]
		for i := 0; i < frames; i++ {
			left[i] = float32(samples[start+i][0])
			right[i] = float32(samples[start+i][1])
		}
		s.view[0], s.view[1] = left, right
		s.fx.Process(s.view, 2, 2)
		for i := 0; i < frames; i++ {
			samples[start+i][0] = float64(left[i])
			samples[start+i][1] = float64(right[i])
		}
	}
	return n, ok
}

// Err returns the underlying streamer's error.
func (s *Streamer) Err() error {
	return s.src.Err()
}
