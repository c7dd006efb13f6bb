package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// AnalysisWidth is the width frames are shrunk to before comparison.
	AnalysisWidth = 160
	// BlurSize is the Gaussian kernel applied to the shrunk frame.
	BlurSize = 5
	// DiffThreshold is the grey-level change that counts a pixel as moved.
	DiffThreshold = 25
)

// MotionDetector reports whether consecutive frames differ enough to
// suggest moving hands. The capture loop only uses it to pick its frame
// rate. Frames are shrunk to AnalysisWidth, converted to grey, blurred and
// differenced against the previous one.
type MotionDetector struct {
	mu         sync.Mutex
	threshold  float64
	prev       gocv.Mat
	hasPrev    bool
	lastChange float64
}

// NewMotionDetector creates a detector that fires when more than threshold
// percent of pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// prepare returns the shrunk, grey, blurred version of frame.
func prepare(frame *gocv.Mat) gocv.Mat {
	small := gocv.NewMat()
	defer small.Close()
	if frame.Cols() > AnalysisWidth {
		h := frame.Rows() * AnalysisWidth / frame.Cols()
		gocv.Resize(*frame, &small, image.Pt(AnalysisWidth, h), 0, 0, gocv.InterpolationArea)
	} else {
		frame.CopyTo(&small)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if small.Channels() > 1 {
		gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)
	} else {
		small.CopyTo(&gray)
	}

	out := gocv.NewMat()
	gocv.GaussianBlur(gray, &out, image.Pt(BlurSize, BlurSize), 0, 0, gocv.BorderDefault)
	return out
}

// Detect compares frame with the previous one and returns whether motion
// was seen and the changed-pixel percentage. The first frame, and the first
// frame after a resolution change, only set the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	cur := prepare(frame)
	defer cur.Close()

	if !m.hasPrev || m.prev.Rows() != cur.Rows() || m.prev.Cols() != cur.Cols() {
		cur.CopyTo(&m.prev)
		m.hasPrev = true
		m.lastChange = 0
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, m.prev, &diff)
	gocv.Threshold(diff, &diff, DiffThreshold, 255, gocv.ThresholdBinary)

	change := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	cur.CopyTo(&m.prev)
	m.lastChange = change

	return change > m.threshold, change
}

// LastChange returns the change percentage measured by the latest Detect.
func (m *MotionDetector) LastChange() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastChange
}

// SetThreshold changes the trigger percentage; non-positive values are
// ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	m.threshold = threshold
	m.mu.Unlock()
}

// Reset forgets the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

// Close releases the baseline Mat. The detector stays usable.
func (m *MotionDetector) Close() {
	m.Reset()
}

func (m *MotionDetector) dropBaseline() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.hasPrev = false
	m.lastChange = 0
}
