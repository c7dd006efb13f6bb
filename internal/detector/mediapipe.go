package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the MediaPipe helper script cannot be
// located.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

const (
	serviceScript = "mediapipe_service.py"

	// serviceIdleTimeout stops the helper after this long without frames.
	serviceIdleTimeout = 30 * time.Second
)

// helper is one running MediaPipe process.
type helper struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// MediaPipeDetector implements Detector with a Python MediaPipe subprocess.
// Each frame goes to the helper's stdin as a big-endian uint32 length
// followed by JPEG bytes; each answer is one JSON line on stdout. The
// helper starts on the first frame and stops again when idle.
type MediaPipeDetector struct {
	config Config
	script string

	mu   sync.Mutex
	proc *helper
	idle *time.Timer
}

// NewMediaPipeDetector returns ErrServiceNotFound when the helper script
// is not installed. No process is started yet.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := locate(scriptCandidates())
	if script == "" {
		return nil, ErrServiceNotFound
	}
	return &MediaPipeDetector{config: config, script: script}, nil
}

// Detect sends frame to the helper and returns the hands it reports,
// dropping those under MinDetection and keeping at most MaxHands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	jpeg, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer jpeg.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.proc == nil {
		if d.proc, err = d.spawn(); err != nil {
			return nil, err
		}
	}

	resp, err := d.proc.roundTrip(jpeg.GetBytes())
	if err != nil {
		// A broken pipe means the helper died; start afresh next frame.
		d.stop()
		return nil, err
	}
	d.armIdle()

	return d.config.filter(resp.Hands), nil
}

// Close stops the helper process if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

func (d *MediaPipeDetector) spawn() (*helper, error) {
	python := locate(pythonCandidates())
	if python == "" {
		python = "python3"
	}

	cmd := exec.Command(python, append([]string{d.script}, d.config.args()...)...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("helper stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("helper stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start mediapipe service: %w", err)
	}

	log.Printf("MediaPipe helper started (pid %d)", cmd.Process.Pid)
	return &helper{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}, nil
}

func (h *helper) roundTrip(jpeg []byte) (*serviceResponse, error) {
	msg := make([]byte, 4+len(jpeg))
	binary.BigEndian.PutUint32(msg, uint32(len(jpeg)))
	copy(msg[4:], jpeg)
	if _, err := h.stdin.Write(msg); err != nil {
		return nil, fmt.Errorf("send frame: %w", err)
	}

	line, err := h.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var resp serviceResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &resp, nil
}

// stop must be called with d.mu held.
func (d *MediaPipeDetector) stop() error {
	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	if d.proc == nil {
		return nil
	}
	proc := d.proc
	d.proc = nil

	proc.stdin.Close()
	return proc.cmd.Wait()
}

func (d *MediaPipeDetector) armIdle() {
	if d.idle != nil {
		d.idle.Reset(serviceIdleTimeout)
		return
	}
	d.idle = time.AfterFunc(serviceIdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.idle = nil
		if err := d.stop(); err != nil {
			log.Printf("MediaPipe helper exited: %v", err)
		}
	})
}

// locate returns the absolute form of the first existing path.
func locate(candidates []string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

// installRoots lists the directories searched for scripts/ and venv/:
// the working directory and its parents, the executable's directory and
// ~/.handsculpt.
func installRoots() []string {
	roots := []string{".", "..", filepath.Join("..", "..")}
	if exe, err := os.Executable(); err == nil {
		roots = append(roots, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".handsculpt"))
	}
	return roots
}

func scriptCandidates() []string {
	var out []string
	for _, root := range installRoots() {
		out = append(out, filepath.Join(root, "scripts", serviceScript))
	}
	return out
}

func pythonCandidates() []string {
	var out []string
	for _, root := range installRoots() {
		out = append(out, filepath.Join(root, "venv", "bin", "python"))
	}
	return out
}

// filter converts helper hands, dropping low scores and capping the count.
func (c Config) filter(hands []jsonHand) []HandLandmarks {
	out := make([]HandLandmarks, 0, len(hands))
	for _, h := range hands {
		if h.Score < c.MinDetection {
			continue
		}
		if c.MaxHands > 0 && len(out) == c.MaxHands {
			break
		}
		out = append(out, h.toHandLandmarks())
	}
	return out
}

type serviceResponse struct {
	Hands []jsonHand `json:"hands"`
}

// jsonHand is one hand as reported by the helper.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	copy(lm.Points[:], h.Points)
	return lm
}
