package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/algo-distortion/distortion"
)

func TestPollReportsOnlyChanges(t *testing.T) {
	s := distortion.NewStore()
	var frames []Frame
	p := NewPoller(s, 0, func(f Frame) { frames = append(frames, f) })

	if _, changed := p.Poll(); !changed {
		t.Fatalf("first poll should report")
	}
	if _, changed := p.Poll(); changed {
		t.Fatalf("unchanged poll should not report")
	}

	s.Set(distortion.Gain, 2)
	f, changed := p.Poll()
	if !changed {
		t.Fatalf("poll after Set should report")
	}
	if f.Values[distortion.Gain] != 2 {
		t.Fatalf("gain value = %f, want 2", f.Values[distortion.Gain])
	}
	if f.Texts[distortion.Gain] != "Gain\n12.0 dB" {
		t.Fatalf("gain text = %q", f.Texts[distortion.Gain])
	}
	if len(frames) != 2 {
		t.Fatalf("callback invoked %d times, want 2", len(frames))
	}
}

func TestNewPollerDefaultsInterval(t *testing.T) {
	p := NewPoller(distortion.NewStore(), -1, nil)
	if p.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", p.interval, DefaultInterval)
	}
}

func TestRunPicksUpAutomationAndStops(t *testing.T) {
	s := distortion.NewStore()
	var mu sync.Mutex
	seen := make(chan float64, 16)
	p := NewPoller(s, time.Millisecond, func(f Frame) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case seen <- f.Values[distortion.InputVolume]:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	if v := <-seen; v != 1 {
		t.Fatalf("initial InputVolume = %f, want 1", v)
	}
	s.Set(distortion.InputVolume, 0.5)

	deadline := time.After(2 * time.Second)
	for found := false; !found; {
		select {
		case v := <-seen:
			found = v == 0.5
		case <-deadline:
			t.Fatalf("poller never observed the automation change")
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}
