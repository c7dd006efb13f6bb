package detector

import "time"

// Frame is one detector sample: every hand seen in a video frame and the
// capture time in Unix milliseconds.
type Frame struct {
	Hands     []HandLandmarks `json:"hands"`
	Timestamp int64           `json:"timestamp"`
}

// NewFrame stamps hands with t.
func NewFrame(hands []HandLandmarks, t time.Time) Frame {
	return Frame{Hands: hands, Timestamp: t.UnixMilli()}
}

// Time returns the frame timestamp. A zero timestamp yields the zero time.
func (f Frame) Time() time.Time {
	if f.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(f.Timestamp)
}
