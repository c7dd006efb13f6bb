package sculpt

import (
	"time"

	"github.com/ayusman/handsculpt/internal/detector"
	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/shape"
	"github.com/ayusman/handsculpt/internal/ui"
)

// FrameInput is one frame of detected hands.
type FrameInput struct {
	Hands []detector.HandLandmarks
	// Now is the frame time; zero means the wall clock.
	Now time.Time
}

// FromFrame converts a detector frame.
func FromFrame(f detector.Frame) FrameInput {
	return FrameInput{Hands: f.Hands, Now: f.Time()}
}

// Step advances the session by one frame.
func (s *Session) Step(in FrameInput) Effects {
	now := in.Now
	if now.IsZero() {
		now = s.now()
	}

	var eff Effects
	manip, orbit := gesture.AssignRoles(in.Hands)
	s.stepOrbit(orbit)

	if manip == nil {
		s.release()
		s.fill(&eff)
		return eff
	}

	pose := s.classifier.Classify(manip)
	eff.Pinching = pose.Pinching

	res := s.router.Route(pose.Tip.X, pose.Tip.Y, ui.Availability{
		Undo: s.history.CanUndo(),
		Redo: s.history.CanRedo(),
	})
	if res.Consumed() {
		eff.Highlight = res.Hit
		if res.Fired {
			s.apply(res.Hit, &eff)
		}
		s.fill(&eff)
		return eff
	}

	if pose.Pinching && s.pickColor(pose.Tip) {
		eff.ColorChanged = true
	}

	switch s.mode {
	case ModeDraggingCorner:
		if pose.Pinching {
			s.dragCorner(pose.Tip)
			eff.ShapeRebuilt = true
		} else {
			s.endCornerDrag()
		}
	case ModeDraggingObject:
		if pose.Pinching {
			s.dragObject(pose.Tip, now, &eff)
		} else {
			s.endObjectDrag()
		}
	}

	if s.mode == ModeIdle {
		s.updateHover(pose.Tip)
		if pose.Pinching {
			s.grab(pose.Tip)
		}
		// The grabbed marker follows the fingertip from the first frame.
		if s.mode == ModeDraggingCorner {
			s.dragCorner(pose.Tip)
			eff.ShapeRebuilt = true
		}
	}

	s.fill(&eff)
	return eff
}

// release handles a frame without a manipulation hand.
func (s *Session) release() {
	if s.mode == ModeDraggingCorner {
		s.Checkpoint()
	}
	s.mode = ModeIdle
	s.dragIndex = -1
	s.dragID = ""
	s.hovered = -1
	s.progress = 0
	s.dwell.Reset()
	s.router.Reset()
}

func (s *Session) stepOrbit(hand *detector.HandLandmarks) {
	if hand == nil || !gesture.IsFist(hand) {
		s.orbitRef = nil
		s.orbiting = false
		return
	}
	anchor := s.classifier.Classify(hand).Anchor
	if s.orbitRef != nil {
		s.scene.Orbit(anchor.X-s.orbitRef.X, anchor.Y-s.orbitRef.Y, s.cfg.OrbitSensitivity)
	}
	s.orbitRef = &anchor
	s.orbiting = true
}

// pickColor samples the wheel under tip. It reports false when tip is not
// over a coloured pixel of the picker.
func (s *Session) pickColor(tip gesture.Point) bool {
	r := s.cfg.Layout.ColorPicker
	if r.Empty() || !r.Contains(tip.X, tip.Y) {
		return false
	}
	hex, ok := s.wheel.SampleScaled(tip.X-r.Left, tip.Y-r.Top, r.Width(), r.Height())
	if !ok {
		return false
	}
	if hex != s.color {
		s.color = hex
		s.rebuild()
	}
	return true
}

// updateHover marks the first marker whose projection lies within the
// hover radius of tip.
func (s *Session) updateHover(tip gesture.Point) {
	cam := s.scene.Camera()
	s.hovered = -1
	for i, p := range s.markers {
		x, y, _ := cam.Project(p)
		dx, dy := x-tip.X, y-tip.Y
		if dx*dx+dy*dy < s.cfg.HoverRadius*s.cfg.HoverRadius {
			s.hovered = i
			return
		}
	}
}

// grab starts a corner drag on the hovered marker, or an object drag on
// the placed solid under tip.
func (s *Session) grab(tip gesture.Point) {
	cam := s.scene.Camera()
	if s.hovered >= 0 {
		_, _, depth := cam.Project(s.markers[s.hovered])
		s.mode = ModeDraggingCorner
		s.dragIndex = s.hovered
		s.dragDepth = depth
		return
	}
	hit, ok := s.scene.Intersect(cam.Ray(tip.X, tip.Y))
	if !ok {
		return
	}
	s.mode = ModeDraggingObject
	s.dragID = hit.ID
	s.dwell.Reset()
	s.progress = 0
}

// dragCorner moves the dragged marker under tip at the grab depth and
// restores the family constraint. A marker set that no longer fits its kind
// ends the drag and is rebuilt from canonical markers.
func (s *Session) dragCorner(tip gesture.Point) {
	cam := s.scene.Camera()
	s.markers[s.dragIndex] = cam.Unproject(tip.X, tip.Y, s.dragDepth)
	if err := shape.Reproject(s.kind, s.markers, s.dragIndex); err != nil {
		s.cancelCornerDrag()
		s.markers = nil
		s.rebuild()
		return
	}
	s.hovered = s.dragIndex
	s.rebuild()
}

func (s *Session) endCornerDrag() {
	s.mode = ModeIdle
	s.dragIndex = -1
	s.Checkpoint()
}

func (s *Session) dragObject(tip gesture.Point, now time.Time, eff *Effects) {
	p, ok := s.scene.Get(s.dragID)
	if !ok {
		s.endObjectDrag()
		return
	}

	cam := s.scene.Camera()
	if t, ok := cam.Ray(tip.X, tip.Y).IntersectPlane(p.Position, cam.Forward()); ok {
		p.Position = cam.Ray(tip.X, tip.Y).At(t)
		s.scene.Move(p.ID, p.Position)
	}

	x, y, _ := cam.Project(p.Position)
	inside := s.cfg.Layout.Bin.Contains(x, y)
	progress, done := s.dwell.Update(inside, now)
	s.progress = progress
	eff.BinActive = inside
	eff.DwellProgress = progress

	if done {
		s.scene.Remove(p.ID)
		eff.Deleted = p.ID
		s.mode = ModeIdle
		s.dragID = ""
		s.progress = 0
	}
}

func (s *Session) endObjectDrag() {
	s.mode = ModeIdle
	s.dragID = ""
	s.progress = 0
	s.dwell.Reset()
}
