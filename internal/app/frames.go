package app

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/shunte88/lymons/internal/display"
)

// FrameSource produces the pixel content for each frame.
type FrameSource interface {
	// Frame fills fb with the content for the given instant. The buffer
	// keeps its previous contents, so sources may paint incrementally.
	Frame(fb *display.FrameBuffer, now time.Time)
}

// TestPattern is the built-in frame source: a vertical bar sweeping the
// panel over a dim gradient, enough motion to verify pacing and enough
// gray levels to verify depth handling.
type TestPattern struct{}

var _ FrameSource = (*TestPattern)(nil)

// Frame implements FrameSource.
func (TestPattern) Frame(fb *display.FrameBuffer, now time.Time) {
	uw, uh := fb.Dimensions()
	w, h := int(uw), int(uh)
	if w == 0 || h == 0 {
		return
	}

	// One full sweep every two seconds.
	phase := float64(now.UnixMilli()%2000) / 2000.0
	bar := int(phase * float64(w))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := 0.15 * float64(x) / float64(w)
			if x == bar {
				l = 1.0
			}
			fb.SetColor(x, y, colorful.Color{R: l, G: l, B: l})
		}
	}
}
