package e2e

import (
	"time"

	"github.com/ayusman/handsculpt/internal/detector"
	"github.com/ayusman/handsculpt/internal/gesture"
)

// script builds timestamped landmark frames from viewport pixel positions,
// mirroring X the way the browser preview does.
type script struct {
	vp gesture.Viewport
	t  time.Time
}

func newScript(vp gesture.Viewport) *script {
	return &script{vp: vp, t: time.UnixMilli(1_750_000_000_000)}
}

func (s *script) norm(x, y float64) (float64, float64) {
	return 1 - x/s.vp.Width, y / s.vp.Height
}

func (s *script) next(hands ...detector.HandLandmarks) detector.Frame {
	s.t = s.t.Add(33 * time.Millisecond)
	return detector.NewFrame(hands, s.t)
}

func (s *script) point(x, y float64) detector.Frame {
	nx, ny := s.norm(x, y)
	return s.next(detector.PointingLandmarks(nx, ny, "Left"))
}

func (s *script) pinch(x, y float64) detector.Frame {
	nx, ny := s.norm(x, y)
	return s.next(detector.PinchLandmarks(nx, ny, "Left"))
}

func (s *script) empty() detector.Frame {
	return s.next()
}
