package sculpt

import (
	"github.com/ayusman/handsculpt/internal/shape"
	"github.com/ayusman/handsculpt/internal/ui"
)

// Effects describes what one step changed, for the rendering and UI layers
// to apply.
type Effects struct {
	// Action is the UI action that fired this frame, if any.
	Action ui.Action `json:"action,omitempty"`
	// Highlight is the button under the fingertip, for hover feedback.
	Highlight ui.Action `json:"highlight,omitempty"`

	Mode          Mode `json:"mode"`
	HoveredMarker int  `json:"hovered_marker"`
	Pinching      bool `json:"pinching"`
	Orbiting      bool `json:"orbiting"`

	ShapeRebuilt bool `json:"shape_rebuilt,omitempty"`
	ColorChanged bool `json:"color_changed,omitempty"`

	// BinActive is set while a dragged solid is over the bin.
	BinActive     bool    `json:"bin_active"`
	DwellProgress float64 `json:"dwell_progress"`
	// Deleted is the ID of a solid removed by a completed dwell.
	Deleted string `json:"deleted,omitempty"`
	// Committed is the ID of a solid placed this frame.
	Committed string `json:"committed,omitempty"`

	// ExportRequested asks the caller to render and save the scene.
	ExportRequested bool   `json:"export_requested,omitempty"`
	Notice          string `json:"notice,omitempty"`

	Kind    shape.Kind `json:"kind"`
	Color   string     `json:"color"`
	CanUndo bool       `json:"can_undo"`
	CanRedo bool       `json:"can_redo"`
}

// Status is a summary of the session for UI surfaces.
type Status struct {
	Kind          shape.Kind `json:"kind"`
	Color         string     `json:"color"`
	Mode          Mode       `json:"mode"`
	Orbiting      bool       `json:"orbiting"`
	CanUndo       bool       `json:"can_undo"`
	CanRedo       bool       `json:"can_redo"`
	HistoryLen    int        `json:"history_len"`
	HistoryCursor int        `json:"history_cursor"`
	Placed        int        `json:"placed"`
	DwellProgress float64    `json:"dwell_progress"`
	Markers       []Marker   `json:"markers"`
	Triangles     int        `json:"triangles"`
}

// Status returns the current session summary.
func (s *Session) Status() Status {
	sh := s.Shape()
	return Status{
		Kind:          s.kind,
		Color:         s.color,
		Mode:          s.mode,
		Orbiting:      s.orbiting,
		CanUndo:       s.history.CanUndo(),
		CanRedo:       s.history.CanRedo(),
		HistoryLen:    s.history.Len(),
		HistoryCursor: s.history.Cursor(),
		Placed:        s.scene.Len(),
		DwellProgress: s.progress,
		Markers:       sh.Markers,
		Triangles:     s.solid.Mesh.TriangleCount(),
	}
}

func (s *Session) fill(eff *Effects) {
	eff.Mode = s.mode
	eff.HoveredMarker = s.hovered
	eff.Orbiting = s.orbiting
	eff.Kind = s.kind
	eff.Color = s.color
	eff.CanUndo = s.history.CanUndo()
	eff.CanRedo = s.history.CanRedo()
}
