package stream

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-distortion/distortion"
	"github.com/gopxl/beep/v2"
)

// sliceStreamer plays back fixed stereo frames.
type sliceStreamer struct {
	frames [][2]float64
	pos    int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n := copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error { return nil }

func testFormat() beep.Format {
	return beep.Format{SampleRate: 48000, NumChannels: 2, Precision: 2}
}

func TestStreamerAppliesEffect(t *testing.T) {
	frames := make([][2]float64, 300)
	for i := range frames {
		v := 0.8 * math.Sin(2*math.Pi*float64(i)/50)
		frames[i] = [2]float64{v, -v}
	}
	fx, err := distortion.NewEffect()
	if err != nil {
		t.Fatalf("NewEffect: %v", err)
	}
	fx.Params().Set(distortion.Gain, 2)

	s, err := New(&sliceStreamer{frames: frames}, fx, testFormat(), 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := make([][2]float64, 512)
	n, ok := s.Stream(out)
	if !ok || n != len(frames) {
		t.Fatalf("Stream returned n=%d ok=%v", n, ok)
	}

	for i := 0; i < n; i++ {
		x := frames[i][0]
		thr := 0.25
		want := 2 * math.Max(-thr, math.Min(thr, x)) / thr
		if math.Abs(out[i][0]-want) > 1e-4 || math.Abs(out[i][1]+want) > 1e-4 {
			t.Fatalf("frame %d = %v, want ±%f", i, out[i], want)
		}
	}

	if n, ok := s.Stream(out); n != 0 || ok {
		t.Fatalf("drained stream returned n=%d ok=%v", n, ok)
	}
	if s.Err() != nil {
		t.Fatalf("Err() = %v", s.Err())
	}
}

func TestStreamerBypassPassesThrough(t *testing.T) {
	frames := [][2]float64{{0.25, -0.5}, {0.125, 1}}
	fx, _ := distortion.NewEffect()
	fx.Params().Set(distortion.MasterBypass, 1)
	s, err := New(&sliceStreamer{frames: frames}, fx, testFormat(), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := make([][2]float64, 2)
	s.Stream(out)
	for i := range frames {
		if out[i] != frames[i] {
			t.Fatalf("frame %d = %v, want %v", i, out[i], frames[i])
		}
	}
}

func TestNewRejectsNil(t *testing.T) {
	fx, _ := distortion.NewEffect()
	if _, err := New(nil, fx, testFormat(), 64); err == nil {
		t.Fatalf("expected error for nil source")
	}
	if _, err := New(&sliceStreamer{}, nil, testFormat(), 64); err == nil {
		t.Fatalf("expected error for nil effect")
	}
}
