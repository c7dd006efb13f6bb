// Package gesture turns raw hand landmarks into the per-frame poses the
// sculpting session reacts to: pinch, fist and fingertip position.
package gesture

import (
	"math"
	"strings"

	"github.com/ayusman/handsculpt/internal/detector"
)

// DefaultPinchThreshold is the thumb-to-index distance, in normalised image
// coordinates, below which a hand counts as pinching.
const DefaultPinchThreshold = 0.045

// Viewport is the size in pixels of the surface landmarks are mapped onto.
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// DefaultViewport matches the browser studio canvas.
var DefaultViewport = Viewport{Width: 1280, Height: 720}

// Point is a position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pose is the interpreted state of one hand for one frame.
type Pose struct {
	// Tip is the index fingertip in mirrored viewport pixels.
	Tip Point `json:"tip"`
	// Anchor is the middle finger knuckle in mirrored viewport pixels; it
	// drives camera orbit.
	Anchor Point `json:"anchor"`
	// PinchDistance is the 2D thumb-to-index distance in normalised units.
	PinchDistance float64 `json:"pinch_distance"`
	Pinching      bool    `json:"pinching"`
	Fist          bool    `json:"fist"`
}

// Classifier interprets hand landmarks against a pinch threshold and a
// viewport.
type Classifier struct {
	PinchThreshold float64
	Viewport       Viewport
}

// NewClassifier creates a Classifier. A non-positive threshold uses
// DefaultPinchThreshold.
func NewClassifier(threshold float64, vp Viewport) *Classifier {
	if threshold <= 0 {
		threshold = DefaultPinchThreshold
	}
	return &Classifier{PinchThreshold: threshold, Viewport: vp}
}

// Classify computes the pose of hand.
func (c *Classifier) Classify(hand *detector.HandLandmarks) Pose {
	d := PinchDistance(hand)
	return Pose{
		Tip:           c.ToScreen(hand.Points[detector.IndexTip]),
		Anchor:        c.ToScreen(hand.Points[detector.MiddleMCP]),
		PinchDistance: d,
		Pinching:      d < c.PinchThreshold,
		Fist:          IsFist(hand),
	}
}

// ToScreen maps a normalised landmark to viewport pixels, mirroring X so the
// preview behaves like a mirror.
func (c *Classifier) ToScreen(p detector.Point3D) Point {
	return Point{
		X: (1 - p.X) * c.Viewport.Width,
		Y: p.Y * c.Viewport.Height,
	}
}

// PinchDistance returns the 2D distance between thumb tip and index tip in
// normalised image coordinates.
func PinchDistance(hand *detector.HandLandmarks) float64 {
	thumb := hand.Points[detector.ThumbTip]
	index := hand.Points[detector.IndexTip]
	return math.Hypot(thumb.X-index.X, thumb.Y-index.Y)
}

// IsFist reports whether all four fingertips sit below their middle joints
// in image space.
func IsFist(hand *detector.HandLandmarks) bool {
	pairs := [4][2]int{
		{detector.IndexTip, detector.IndexPIP},
		{detector.MiddleTip, detector.MiddlePIP},
		{detector.RingTip, detector.RingPIP},
		{detector.PinkyTip, detector.PinkyPIP},
	}
	for _, p := range pairs {
		if hand.Points[p[0]].Y <= hand.Points[p[1]].Y {
			return false
		}
	}
	return true
}

// AssignRoles splits detected hands into the manipulating hand and the orbit
// hand. The detector sees a mirrored image, so the label "Right" is the
// user's left hand, which orbits; any other label manipulates. Frames with
// more than two hands are ignored.
func AssignRoles(hands []detector.HandLandmarks) (manip, orbit *detector.HandLandmarks) {
	if len(hands) == 0 || len(hands) > 2 {
		return nil, nil
	}
	for i := range hands {
		h := &hands[i]
		if strings.EqualFold(h.Handedness, "Right") {
			if orbit == nil {
				orbit = h
			}
			continue
		}
		if manip == nil {
			manip = h
		}
	}
	return manip, orbit
}
