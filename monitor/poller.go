// Package monitor keeps a display in sync with parameter automation by
// polling the parameter store on a fixed interval.
package monitor

import (
	"context"
	"time"

	"github.com/cwbudde/algo-distortion/distortion"
)

// DefaultInterval matches a typical editor refresh rate.
const DefaultInterval = 30 * time.Millisecond

// Source is the read-only view of the parameters a display needs.
type Source interface {
	Get(id distortion.ParamID) float64
	DisplayText(id distortion.ParamID) string
}

// Frame is one poll of every parameter.
type Frame struct {
	Values [distortion.NumParams]float64
	Texts  [distortion.NumParams]string
}

// Poller reads a Source periodically and reports frames that differ from
// the previous one.
type Poller struct {
	src      Source
	interval time.Duration
	onChange func(Frame)

	last    Frame
	hasLast bool
}

// NewPoller creates a poller. A non-positive interval selects DefaultInterval.
func NewPoller(src Source, interval time.Duration, onChange func(Frame)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{src: src, interval: interval, onChange: onChange}
}

// Poll reads the source once, reporting the frame when it changed.
// It returns the frame and whether it was reported.
func (p *Poller) Poll() (Frame, bool) {
	var f Frame
	for id := distortion.ParamID(0); id < distortion.NumParams; id++ {
		f.Values[id] = p.src.Get(id)
		f.Texts[id] = p.src.DisplayText(id)
	}
	if p.hasLast && f == p.last {
		return f, false
	}
	p.last = f
	p.hasLast = true
	if p.onChange != nil {
		p.onChange(f)
	}
	return f, true
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Poll()
		}
	}
}
