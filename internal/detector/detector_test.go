package detector

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHandLandmarks_Valid(t *testing.T) {
	tests := []struct {
		name string
		hand HandLandmarks
		want bool
	}{
		{"open palm", OpenPalmLandmarks(), true},
		{"all zero", HandLandmarks{}, false},
		{"nan coordinate", func() HandLandmarks {
			h := OpenPalmLandmarks()
			h.Points[IndexTip].X = math.NaN()
			return h
		}(), false},
		{"infinite coordinate", func() HandLandmarks {
			h := OpenPalmLandmarks()
			h.Points[ThumbTip].Z = math.Inf(1)
			return h
		}(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hand.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidHands(t *testing.T) {
	hands := []HandLandmarks{OpenPalmLandmarks(), {}, FistLandmarks(0.5, 0.6, "Right")}
	got := ValidHands(hands)
	if len(got) != 2 {
		t.Fatalf("expected 2 valid hands, got %d", len(got))
	}
	if len(hands) != 3 {
		t.Error("input slice should be untouched")
	}
}

func TestFrame_Time(t *testing.T) {
	if !(Frame{}).Time().IsZero() {
		t.Error("zero timestamp should give the zero time")
	}
	f := NewFrame(nil, time.UnixMilli(1700000000123))
	if f.Timestamp != 1700000000123 || f.Time().UnixMilli() != 1700000000123 {
		t.Errorf("unexpected frame time %d", f.Timestamp)
	}
}

func TestMockDetector(t *testing.T) {
	mock := NewMockDetector()
	var _ Detector = mock

	if hands, err := mock.Detect(nil); err != nil || hands != nil {
		t.Errorf("fresh mock Detect() = %v, %v; want nil, nil", hands, err)
	}

	mock.SetHands([]HandLandmarks{FistLandmarks(0.5, 0.5, "Right"), OpenPalmLandmarks()})
	if hands, _ := mock.Detect(nil); len(hands) != 2 {
		t.Errorf("expected 2 hands, got %d", len(hands))
	}

	failure := errors.New("detection failed")
	mock.SetError(failure)
	if hands, err := mock.Detect(nil); !errors.Is(err, failure) || hands != nil {
		t.Errorf("Detect() = %v, %v; want nil, %v", hands, err, failure)
	}

	mock.SetError(nil)
	if _, err := mock.Detect(nil); err != nil {
		t.Errorf("cleared error still returned: %v", err)
	}

	if mock.Calls() != 4 {
		t.Errorf("Calls() = %d, want 4", mock.Calls())
	}
	if err := mock.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

// fingerRise returns how far each fingertip sits above its knuckle, for
// index, middle, ring and pinky.
func fingerRise(h HandLandmarks) [4]float64 {
	var out [4]float64
	for f, base := range fingerBase {
		out[f] = h.Points[base].Y - h.Points[base+3].Y
	}
	return out
}

func TestSyntheticHands(t *testing.T) {
	t.Run("open palm", func(t *testing.T) {
		h := OpenPalmLandmarks()
		if h.Handedness != "Right" || h.Score < 0.9 {
			t.Errorf("unexpected metadata %q %.2f", h.Handedness, h.Score)
		}
		for f, rise := range fingerRise(h) {
			if rise < 0.2 {
				t.Errorf("finger %d rises %.2f, want >= 0.2", f, rise)
			}
		}
		if h.Points[ThumbTip].X <= h.Points[ThumbMCP].X {
			t.Error("thumb should point away from the palm")
		}
		for f := 1; f < 4; f++ {
			if h.Points[fingerBase[f]].X >= h.Points[fingerBase[f-1]].X {
				t.Errorf("knuckle %d is not left of knuckle %d", f, f-1)
			}
		}
	})

	t.Run("fist", func(t *testing.T) {
		h := FistLandmarks(0.3, 0.4, "Left")
		if h.Handedness != "Left" {
			t.Errorf("handedness = %q", h.Handedness)
		}
		if got := h.Points[MiddleMCP]; math.Abs(got.X-0.3) > 1e-9 || math.Abs(got.Y-0.4) > 1e-9 {
			t.Errorf("middle knuckle at %+v, want (0.3, 0.4)", got)
		}
		for f, base := range fingerBase {
			if h.Points[base+3].Y <= h.Points[base+1].Y {
				t.Errorf("finger %d tip is not folded below its middle joint", f)
			}
		}
		if h.Points[ThumbTip].Y >= h.Points[ThumbIP].Y {
			t.Error("fist thumb should point up")
		}
		if !h.Valid() {
			t.Error("fist should be a valid detection")
		}
	})

	t.Run("pointing and pinch", func(t *testing.T) {
		point := PointingLandmarks(0.2, 0.3, "Left")
		if got := point.Points[IndexTip]; math.Abs(got.X-0.2) > 1e-9 || math.Abs(got.Y-0.3) > 1e-9 {
			t.Errorf("index tip at %+v, want (0.2, 0.3)", got)
		}
		gap := math.Hypot(point.Points[ThumbTip].X-0.2, point.Points[ThumbTip].Y-0.3)
		if gap < 0.1 {
			t.Errorf("pointing thumb only %.3f from the index tip", gap)
		}

		pinch := PinchLandmarks(0.2, 0.3, "Left")
		gap = math.Hypot(pinch.Points[ThumbTip].X-0.2, pinch.Points[ThumbTip].Y-0.3)
		if gap > 0.02 {
			t.Errorf("pinch thumb %.3f from the index tip", gap)
		}
	})
}

func TestConfig_Args(t *testing.T) {
	args := DefaultConfig().args()
	want := []string{
		"--max-hands", "2",
		"--min-detection-confidence", "0.5",
		"--min-tracking-confidence", "0.5",
	}
	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %d", len(want), len(args))
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestJSONHand_ToHandLandmarks(t *testing.T) {
	h := jsonHand{
		Points:     []Point3D{{X: 0.1, Y: 0.2, Z: 0.3}},
		Handedness: "Right",
		Score:      0.9,
	}
	lm := h.toHandLandmarks()
	if lm.Handedness != "Right" || lm.Score != 0.9 {
		t.Errorf("unexpected metadata: %+v", lm)
	}
	if lm.Points[Wrist] != (Point3D{X: 0.1, Y: 0.2, Z: 0.3}) {
		t.Errorf("unexpected wrist %+v", lm.Points[Wrist])
	}
	if lm.Points[PinkyTip] != (Point3D{}) {
		t.Error("missing points should stay zero")
	}
}

func TestConfig_Filter(t *testing.T) {
	hands := []jsonHand{
		{Handedness: "Left", Score: 0.9},
		{Handedness: "Right", Score: 0.3},
		{Handedness: "Right", Score: 0.8},
		{Handedness: "Left", Score: 0.7},
	}

	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{"defaults", DefaultConfig(), []string{"Left", "Right"}},
		{"no cap", Config{MinDetection: 0.5}, []string{"Left", "Right", "Left"}},
		{"single hand", Config{MaxHands: 1, MinDetection: 0.5}, []string{"Left"}},
		{"strict", Config{MinDetection: 0.95}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.filter(hands)
			if len(got) != len(tt.want) {
				t.Fatalf("filter() kept %d hands, want %d", len(got), len(tt.want))
			}
			for i, h := range got {
				if h.Handedness != tt.want[i] {
					t.Errorf("hand %d = %s, want %s", i, h.Handedness, tt.want[i])
				}
			}
		})
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "scripts", serviceScript)
	if err := os.MkdirAll(filepath.Dir(present), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(present, []byte("# helper"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := locate([]string{filepath.Join(dir, "missing"), present}); got != present {
		t.Errorf("locate() = %q, want %q", got, present)
	}
	if got := locate([]string{filepath.Join(dir, "missing")}); got != "" {
		t.Errorf("locate() = %q, want empty", got)
	}
	if n := len(scriptCandidates()); n < 3 {
		t.Errorf("expected at least 3 script candidates, got %d", n)
	}
}
