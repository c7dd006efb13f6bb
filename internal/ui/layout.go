// Package ui hit-tests fingertip positions against the on-screen controls
// and turns hits into edge-triggered actions.
package ui

// Rect is an axis-aligned rectangle in viewport pixels. Edges are inclusive.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NewRect builds a Rect from its top-left corner and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// Width returns the width of r.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the height of r.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Center returns the centre of r.
func (r Rect) Center() (x, y float64) {
	return (r.Left + r.Right) / 2, (r.Top + r.Bottom) / 2
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Layout holds the rectangles of every interactive element.
type Layout struct {
	ShapeCycle  Rect `json:"shape_cycle"`
	Undo        Rect `json:"undo"`
	Redo        Rect `json:"redo"`
	Reset       Rect `json:"reset"`
	Export      Rect `json:"export"`
	Commit      Rect `json:"commit"`
	ColorPicker Rect `json:"color_picker"`
	Bin         Rect `json:"bin"`
}

// DefaultLayout arranges the controls for a viewport of w by h pixels: a
// button column on the left, the colour wheel top right and the bin bottom
// right.
func DefaultLayout(w, h float64) Layout {
	const (
		margin = 20
		btnW   = 140
		btnH   = 48
		gap    = 12
		wheel  = 160
		bin    = 120
	)
	row := func(i int) Rect {
		return NewRect(margin, margin+float64(i)*(btnH+gap), btnW, btnH)
	}
	return Layout{
		ShapeCycle:  row(0),
		Undo:        row(1),
		Redo:        row(2),
		Reset:       row(3),
		Export:      row(4),
		Commit:      row(5),
		ColorPicker: NewRect(w-margin-wheel, margin, wheel, wheel),
		Bin:         NewRect(w-margin-bin, h-margin-bin, bin, bin),
	}
}
