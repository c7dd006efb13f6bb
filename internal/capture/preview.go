package capture

import (
	"errors"

	"gocv.io/x/gocv"
)

// PreviewQuality is the JPEG quality of browser preview frames.
const PreviewQuality = 70

// ErrEmptyFrame is returned for nil or empty Mats.
var ErrEmptyFrame = errors.New("frame is empty")

// Mirror returns a horizontally flipped copy of frame, so that the preview
// moves like a mirror. The caller closes the result.
func Mirror(frame *gocv.Mat) (gocv.Mat, error) {
	if frame == nil || frame.Empty() {
		return gocv.NewMat(), ErrEmptyFrame
	}
	dst := gocv.NewMat()
	gocv.Flip(*frame, &dst, 1)
	return dst, nil
}

// EncodePreview mirrors frame and encodes it as JPEG.
func EncodePreview(frame *gocv.Mat) ([]byte, error) {
	mirrored, err := Mirror(frame)
	defer mirrored.Close()
	if err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncodeWithParams(".jpg", mirrored, []int{int(gocv.IMWriteJpegQuality), PreviewQuality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
