package sculpt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/history"
	"github.com/ayusman/handsculpt/internal/palette"
	"github.com/ayusman/handsculpt/internal/scene"
	"github.com/ayusman/handsculpt/internal/shape"
	"github.com/ayusman/handsculpt/internal/ui"
)

// NoticeNothingToExport is shown when export is requested on an empty scene.
const NoticeNothingToExport = "No shape to export!"

// ErrMarkerIndex is returned for a marker index outside the current shape.
var ErrMarkerIndex = errors.New("marker index out of range")

// Mode is the manipulation state of the session.
type Mode string

const (
	ModeIdle           Mode = "idle"
	ModeDraggingCorner Mode = "dragging_corner"
	ModeDraggingObject Mode = "dragging_object"
	// ModeOrbiting is only reported for the orbit hand; it runs alongside
	// the other modes.
	ModeOrbiting Mode = "orbiting"
)

// Marker is one corner handle of the editable shape.
type Marker struct {
	Index    int        `json:"index"`
	Position mgl64.Vec3 `json:"position"`
	Hovered  bool       `json:"hovered"`
}

// Shape is the editable shape: its kind, fill colour and markers.
type Shape struct {
	Kind    shape.Kind `json:"kind"`
	Color   string     `json:"color"`
	Markers []Marker   `json:"markers"`
}

// Positions returns the marker positions in index order.
func (s Shape) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s.Markers))
	for i, m := range s.Markers {
		out[i] = m.Position
	}
	return out
}

// Session owns everything one sculpting user interacts with. It is not safe
// for concurrent use; callers serialise Step and the action methods.
type Session struct {
	cfg        Config
	scene      *scene.Scene
	history    *history.Manager
	router     *ui.Router
	classifier *gesture.Classifier
	wheel      *palette.Wheel
	dwell      *Dwell
	now        func() time.Time

	kind    shape.Kind
	color   string
	markers []mgl64.Vec3
	solid   shape.Solid
	hovered int

	mode      Mode
	dragIndex int
	dragDepth float64
	dragID    string
	progress  float64

	orbitRef *gesture.Point
	orbiting bool
}

// New creates a session editing cfg.InitialKind in sc and records the
// initial state as the first history entry.
func New(cfg Config, sc *scene.Scene) *Session {
	cfg = cfg.withDefaults()
	if sc == nil {
		sc = scene.New(scene.DefaultCamera(cfg.Viewport))
	}
	color, err := palette.Normalize(cfg.InitialColor)
	if err != nil {
		color = palette.DefaultColor
	}

	s := &Session{
		cfg:        cfg,
		scene:      sc,
		history:    history.New(cfg.HistoryLimit),
		router:     ui.NewRouter(cfg.Layout),
		classifier: gesture.NewClassifier(cfg.PinchThreshold, cfg.Viewport),
		wheel:      palette.NewWheel(int(cfg.Layout.ColorPicker.Width())),
		dwell:      NewDwell(cfg.DwellDuration),
		now:        time.Now,
		kind:       cfg.InitialKind,
		color:      color,
		hovered:    -1,
		mode:       ModeIdle,
		dragIndex:  -1,
	}
	s.loadCanonical()
	s.Checkpoint()
	return s
}

// Config returns the session's effective configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Scene returns the scene the session edits.
func (s *Session) Scene() *scene.Scene {
	return s.scene
}

// Wheel returns the colour wheel used by the picker.
func (s *Session) Wheel() *palette.Wheel {
	return s.wheel
}

// Mode returns the manipulation state.
func (s *Session) Mode() Mode {
	return s.mode
}

// Shape returns a copy of the editable shape.
func (s *Session) Shape() Shape {
	out := Shape{Kind: s.kind, Color: s.color, Markers: make([]Marker, len(s.markers))}
	for i, p := range s.markers {
		out.Markers[i] = Marker{Index: i, Position: p, Hovered: i == s.hovered}
	}
	return out
}

// Solid returns a copy of the current fill and wireframe.
func (s *Session) Solid() shape.Solid {
	return s.solid.Clone()
}

// CanUndo reports whether Undo would change the shape.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change the shape.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Checkpoint records the current shape in the history.
func (s *Session) Checkpoint() {
	markers := make([]mgl64.Vec3, len(s.markers))
	copy(markers, s.markers)
	s.history.Commit(history.Snapshot{Kind: s.kind, Color: s.color, Markers: markers})
}

// SetKind switches to kind with canonical markers and records a snapshot.
func (s *Session) SetKind(kind shape.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", shape.ErrUnknownKind, kind)
	}
	s.switchKind(kind)
	return nil
}

func (s *Session) switchKind(kind shape.Kind) {
	s.kind = kind
	s.loadCanonical()
	s.Checkpoint()
}

// CycleShape advances to the next kind in selector order.
func (s *Session) CycleShape() shape.Kind {
	s.switchKind(s.kind.Next())
	return s.kind
}

// Reset restores the canonical markers of the current kind and records a
// snapshot.
func (s *Session) Reset() {
	s.loadCanonical()
	s.Checkpoint()
}

// Undo restores the previous snapshot. It reports false at the oldest one.
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo()
	if ok {
		s.restore(snap)
	}
	return ok
}

// Redo restores the next snapshot. It reports false at the newest one.
func (s *Session) Redo() bool {
	snap, ok := s.history.Redo()
	if ok {
		s.restore(snap)
	}
	return ok
}

// Commit moves the editable shape into the scene as a placed solid and
// starts a fresh canonical shape of the same kind. The history is left
// untouched.
func (s *Session) Commit() scene.Placed {
	placed := s.scene.Add(s.solid)
	s.loadCanonical()
	return placed
}

// SetColor changes the fill colour and rebuilds the solid.
func (s *Session) SetColor(hex string) error {
	c, err := palette.Normalize(hex)
	if err != nil {
		return err
	}
	s.color = c
	s.rebuild()
	return nil
}

// MoveMarker places marker i at pos, restores the family constraint and
// records a snapshot, as a completed drag would.
func (s *Session) MoveMarker(i int, pos mgl64.Vec3) error {
	if i < 0 || i >= len(s.markers) {
		return fmt.Errorf("%w: %d", ErrMarkerIndex, i)
	}
	s.markers[i] = pos
	if err := shape.Reproject(s.kind, s.markers, i); err != nil {
		return err
	}
	s.rebuild()
	s.Checkpoint()
	return nil
}

// Apply runs a UI action as if its button had been pressed.
func (s *Session) Apply(action ui.Action) Effects {
	var eff Effects
	s.apply(action, &eff)
	s.fill(&eff)
	return eff
}

func (s *Session) apply(action ui.Action, eff *Effects) {
	eff.Action = action
	switch action {
	case ui.ActionCycle:
		s.CycleShape()
		eff.ShapeRebuilt = true
	case ui.ActionUndo:
		eff.ShapeRebuilt = s.Undo()
	case ui.ActionRedo:
		eff.ShapeRebuilt = s.Redo()
	case ui.ActionReset:
		s.Reset()
		eff.ShapeRebuilt = true
	case ui.ActionCommit:
		p := s.Commit()
		eff.Committed = p.ID
		eff.ShapeRebuilt = true
	case ui.ActionExport:
		if s.scene.HasContent() {
			eff.ExportRequested = true
		} else {
			eff.Notice = NoticeNothingToExport
		}
	}
}

// loadCanonical replaces the markers with the canonical set for the
// current kind and rebuilds.
func (s *Session) loadCanonical() {
	markers, err := shape.InitialMarkers(s.kind)
	if err != nil {
		s.kind = shape.KindCube
		markers, _ = shape.InitialMarkers(s.kind)
	}
	s.markers = markers
	s.cancelCornerDrag()
	s.rebuild()
}

func (s *Session) restore(snap history.Snapshot) {
	s.kind = snap.Kind
	s.color = snap.Color
	s.markers = snap.Markers
	s.cancelCornerDrag()
	s.rebuild()
}

// rebuild regenerates the solid from the markers and swaps it into the
// scene.
func (s *Session) rebuild() {
	solid, markers, err := shape.Build(s.kind, s.color, s.markers)
	if err != nil {
		// Markers of the wrong count can only come from a bad snapshot.
		solid, markers, _ = shape.Build(s.kind, s.color, nil)
	}
	s.solid = solid
	s.markers = markers
	s.scene.SetEditing(solid, markers)
}

func (s *Session) cancelCornerDrag() {
	if s.mode == ModeDraggingCorner {
		s.mode = ModeIdle
	}
	s.dragIndex = -1
	s.hovered = -1
}
