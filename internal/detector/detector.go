package detector

import (
	"strconv"

	"gocv.io/x/gocv"
)

// Detector turns a camera frame into hand landmarks. A frame without hands
// yields an empty slice and no error.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes the MediaPipe hand model. Sculpting needs two hands at most:
// one manipulating, one orbiting.
type Config struct {
	MaxHands int

	// MinDetection drops hands scoring below it, both in the model and
	// again on the reported score.
	MinDetection float64
	MinTracking  float64
}

// DefaultConfig tracks two hands at MediaPipe's usual 0.5 thresholds.
func DefaultConfig() Config {
	return Config{MaxHands: 2, MinDetection: 0.5, MinTracking: 0.5}
}

// args renders c as helper command-line flags.
func (c Config) args() []string {
	ftoa := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		"--max-hands", strconv.Itoa(c.MaxHands),
		"--min-detection-confidence", ftoa(c.MinDetection),
		"--min-tracking-confidence", ftoa(c.MinTracking),
	}
}
