package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a Detector whose results are set by the caller. It is
// used when no MediaPipe helper is installed and in tests.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a MockDetector that sees no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that Detect returns.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	m.hands = hands
	m.mu.Unlock()
}

// SetError makes Detect fail with err until it is cleared with nil.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Detect ignores frame and returns the configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect has run.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op.
func (m *MockDetector) Close() error {
	return nil
}

// Synthetic hand geometry, in normalised image units. The hand is upright
// with the wrist at the bottom and the index finger on the +X side.
var (
	restWrist    = Point3D{X: 0.5, Y: 0.8}
	knuckleY     = 0.68
	knuckleX     = [4]float64{0.55, 0.50, 0.45, 0.40} // index, middle, ring, pinky
	fingerSpread = [4]float64{0.03, 0, -0.03, -0.06}
	fingerBase   = [4]int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	curlDY       = [4]float64{0, -0.03, -0.01, 0.03} // indexed by joint, 1 is PIP
)

// syntheticHand builds a right-labelled hand with every finger either
// extended upward or curled back below its middle joint. An extended hand
// holds its thumb out to the side; a curled one holds it up.
func syntheticHand(extended bool) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = restWrist

	for f, base := range fingerBase {
		mcp := Point3D{X: knuckleX[f], Y: knuckleY}
		h.Points[base] = mcp
		for j := 1; j <= 3; j++ {
			var p Point3D
			if extended {
				// PIP, DIP and tip climb 0.11 per joint and fan out.
				step := float64(j)
				p = Point3D{X: mcp.X + fingerSpread[f]*step/3, Y: mcp.Y - 0.11*step}
			} else {
				// Curled: the tip folds back below the middle joint.
				p = Point3D{X: mcp.X - 0.01*float64(j-1), Y: mcp.Y + curlDY[j], Z: -0.03}
			}
			h.Points[base+j] = p
		}
	}

	thumbDir := Point3D{X: 0.06, Y: -0.05}
	if !extended {
		thumbDir = Point3D{X: 0.01, Y: -0.12}
	}
	cmc := Point3D{X: 0.55, Y: 0.75}
	h.Points[ThumbCMC] = cmc
	for j := 1; j <= 3; j++ {
		step := float64(j)
		h.Points[ThumbCMC+j] = Point3D{X: cmc.X + thumbDir.X*step, Y: cmc.Y + thumbDir.Y*step, Z: 0.02}
	}
	return h
}

// shift moves every point of h so that landmark idx lands on (x, y).
func (h HandLandmarks) shift(idx int, x, y float64) HandLandmarks {
	dx := x - h.Points[idx].X
	dy := y - h.Points[idx].Y
	for i := range h.Points {
		h.Points[i].X += dx
		h.Points[i].Y += dy
	}
	return h
}

// OpenPalmLandmarks returns an upright open hand with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return syntheticHand(true)
}

// PointingLandmarks returns an open hand whose index fingertip sits at the
// normalised image position (x, y) with the thumb held well away from it.
func PointingLandmarks(x, y float64, handedness string) HandLandmarks {
	h := syntheticHand(true).shift(IndexTip, x, y)
	h.Handedness = handedness
	return h
}

// PinchLandmarks returns PointingLandmarks with the thumb tip brought next to
// the index fingertip.
func PinchLandmarks(x, y float64, handedness string) HandLandmarks {
	h := PointingLandmarks(x, y, handedness)
	h.Points[ThumbTip] = Point3D{X: x + 0.01, Y: y + 0.01, Z: h.Points[IndexTip].Z}
	return h
}

// FistLandmarks returns a closed fist whose middle finger knuckle sits at the
// normalised image position (x, y).
func FistLandmarks(x, y float64, handedness string) HandLandmarks {
	h := syntheticHand(false).shift(MiddleMCP, x, y)
	h.Handedness = handedness
	return h
}
