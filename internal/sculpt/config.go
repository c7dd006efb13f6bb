// Package sculpt is the per-frame interaction state machine: it routes one
// frame of hand poses to UI actions, corner drags, object drags, bin
// deletion and camera orbit, and keeps the editable shape and its history.
package sculpt

import (
	"time"

	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/history"
	"github.com/ayusman/handsculpt/internal/palette"
	"github.com/ayusman/handsculpt/internal/scene"
	"github.com/ayusman/handsculpt/internal/shape"
	"github.com/ayusman/handsculpt/internal/ui"
)

// Default tuning values.
const (
	DefaultHoverRadius   = 40.0
	DefaultDwellDuration = 3 * time.Second
)

// Config tunes a Session.
type Config struct {
	Viewport gesture.Viewport
	Layout   ui.Layout

	// PinchThreshold is the normalised thumb-to-index distance that counts
	// as a pinch.
	PinchThreshold float64

	// HoverRadius is the fingertip-to-marker distance in pixels within
	// which a marker is hovered.
	HoverRadius float64

	// DwellDuration is how long a dragged solid must stay over the bin
	// before it is deleted.
	DwellDuration time.Duration

	HistoryLimit     int
	OrbitSensitivity float64

	InitialKind  shape.Kind
	InitialColor string
}

// DefaultConfig returns the standard tuning for viewport vp.
func DefaultConfig(vp gesture.Viewport) Config {
	return Config{
		Viewport:         vp,
		Layout:           ui.DefaultLayout(vp.Width, vp.Height),
		PinchThreshold:   gesture.DefaultPinchThreshold,
		HoverRadius:      DefaultHoverRadius,
		DwellDuration:    DefaultDwellDuration,
		HistoryLimit:     history.DefaultLimit,
		OrbitSensitivity: scene.DefaultOrbitSensitivity,
		InitialKind:      shape.KindCube,
		InitialColor:     palette.DefaultColor,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig(c.Viewport)
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		c.Viewport = gesture.DefaultViewport
		d = DefaultConfig(c.Viewport)
	}
	if c.Layout == (ui.Layout{}) {
		c.Layout = d.Layout
	}
	if c.PinchThreshold <= 0 {
		c.PinchThreshold = d.PinchThreshold
	}
	if c.HoverRadius <= 0 {
		c.HoverRadius = d.HoverRadius
	}
	if c.DwellDuration <= 0 {
		c.DwellDuration = d.DwellDuration
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.OrbitSensitivity == 0 {
		c.OrbitSensitivity = d.OrbitSensitivity
	}
	if !c.InitialKind.Valid() {
		c.InitialKind = d.InitialKind
	}
	if c.InitialColor == "" {
		c.InitialColor = d.InitialColor
	}
	return c
}
