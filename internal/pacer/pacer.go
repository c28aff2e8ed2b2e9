// Package pacer throttles hardware flushes to a target frame rate and,
// with AutoPacer, adapts that rate to the bus's real achievable
// throughput. I2C panels typically manage ~30fps, SPI ~60fps; rather
// than being told the bus type, the auto pacer measures flush latency
// and converges on the fastest safe rate.
package pacer

import "time"

// Pacer is a non-blocking frame scheduler. ShouldFlush polls whether the
// next frame is due; it never sleeps and never preempts a flush in
// flight.
type Pacer struct {
	now          func() time.Time
	nextDeadline time.Time
	frame        time.Duration
}

// New creates a pacer targeting the given frames per second. A zero
// target is treated as 1.
func New(targetFPS uint32) *Pacer {
	p := &Pacer{now: time.Now}
	p.nextDeadline = p.now()
	p.SetFPS(targetFPS)
	return p
}

// SetFPS retargets the frame rate without disturbing the current
// deadline.
func (p *Pacer) SetFPS(fps uint32) {
	if fps < 1 {
		fps = 1
	}
	p.frame = time.Duration(1_000_000/fps) * time.Microsecond
}

// FrameDuration returns the current frame interval.
func (p *Pacer) FrameDuration() time.Duration {
	return p.frame
}

// ShouldFlush reports whether a flush is due now. When it returns true
// the next deadline is scheduled exactly one frame from now - missed
// deadlines are never accumulated, so a long stall yields one flush, not
// a burst.
func (p *Pacer) ShouldFlush() bool {
	now := p.now()
	if !now.Before(p.nextDeadline) {
		p.nextDeadline = now.Add(p.frame)
		return true
	}
	return false
}

// Feedback control defaults.
const (
	defaultAlpha    = 0.2  // EMA smoothing factor
	defaultHeadroom = 1.25 // margin above measured latency to avoid bus saturation
)

// AutoPacer layers feedback control on a Pacer: callers report measured
// flush latency after each successful flush, and the pacer retargets
// toward the highest rate the bus sustains with headroom to spare.
type AutoPacer struct {
	pacer    *Pacer
	emaMS    float64
	alpha    float64
	headroom float64
	maxFPS   uint32
	minFPS   uint32
}

// NewAuto creates an adaptive pacer starting at initialFPS, bounded to
// [minFPS, maxFPS].
func NewAuto(initialFPS, maxFPS, minFPS uint32) *AutoPacer {
	return &AutoPacer{
		pacer:    New(initialFPS),
		alpha:    defaultAlpha,
		headroom: defaultHeadroom,
		maxFPS:   maxFPS,
		minFPS:   minFPS,
	}
}

// ShouldFlush polls the underlying pacer.
func (a *AutoPacer) ShouldFlush() bool {
	return a.pacer.ShouldFlush()
}

// RecordFlush feeds one measured flush duration into the moving average
// and retargets the frame rate. Call it immediately after a successful
// flush.
func (a *AutoPacer) RecordFlush(d time.Duration) {
	sample := float64(d.Microseconds()) / 1000.0
	if a.emaMS == 0 {
		a.emaMS = sample
	} else {
		a.emaMS = a.alpha*sample + (1-a.alpha)*a.emaMS
	}
	if a.emaMS > 0 {
		a.pacer.SetFPS(a.safeFPS())
	}
}

// TargetFPS returns the current derived target rate.
func (a *AutoPacer) TargetFPS() uint32 {
	if a.emaMS == 0 {
		return uint32(time.Second / a.pacer.FrameDuration())
	}
	return a.safeFPS()
}

func (a *AutoPacer) safeFPS() uint32 {
	fps := 1000.0 / (a.emaMS * a.headroom)
	if fps < float64(a.minFPS) {
		fps = float64(a.minFPS)
	}
	if fps > float64(a.maxFPS) {
		fps = float64(a.maxFPS)
	}
	return uint32(fps)
}
