// Package capture reads webcam frames with GoCV (OpenCV), gates the frame
// rate on motion and prepares mirrored previews for the browser.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrCameraNotOpen is returned when reading from a closed camera.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrReadFailed is returned when the device yields no usable frame.
	ErrReadFailed = errors.New("camera read failed")
)

// Camera is a frame source. ReadFrame returns a Mat owned by the caller.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Device selects a capture device and the mode requested from it. Drivers
// may ignore the requested size.
type Device struct {
	ID     int
	Width  int
	Height int
	FPS    int
}

// DefaultDevice asks device id for a 16:9 640x360 stream, the aspect of the
// studio viewport, at the idle frame rate.
func DefaultDevice(id int) Device {
	return Device{ID: id, Width: 640, Height: 360, FPS: 5}
}

type deviceCamera struct {
	dev     Device
	capture *gocv.VideoCapture
	mu      sync.Mutex
}

// NewCamera returns a Camera for dev. Nothing is opened until Open.
func NewCamera(dev Device) Camera {
	if dev.FPS <= 0 {
		dev.FPS = DefaultDevice(dev.ID).FPS
	}
	return &deviceCamera{dev: dev}
}

func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.dev.ID)
	if err != nil {
		return err
	}
	if c.dev.Width > 0 && c.dev.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.dev.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.dev.Height))
	}
	vc.Set(gocv.VideoCaptureFPS, float64(c.dev.FPS))

	c.capture = vc
	return nil
}

func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrReadFailed
	}
	return &mat, nil
}

// SetFPS changes the requested frame rate; non-positive values are ignored.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dev.FPS = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.FPS
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}
