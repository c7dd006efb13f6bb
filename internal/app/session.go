package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handsculpt/internal/detector"
	"github.com/ayusman/handsculpt/internal/plugin"
	"github.com/ayusman/handsculpt/internal/render"
	"github.com/ayusman/handsculpt/internal/scene"
	"github.com/ayusman/handsculpt/internal/sculpt"
	"github.com/ayusman/handsculpt/internal/store"
	"github.com/ayusman/handsculpt/internal/ui"
)

// HandleFrame runs one frame of hand landmarks through the session,
// performs any export it requests and publishes the result.
func (a *App) HandleFrame(f detector.Frame) sculpt.Effects {
	now := f.Time()
	if now.IsZero() {
		now = time.Now()
	}

	a.sessionMu.Lock()
	eff := a.session.Step(sculpt.FrameInput{Hands: f.Hands, Now: now})
	a.afterEffects(&eff, now)
	a.sessionMu.Unlock()

	a.hub.publish(Event{Effects: &eff, Hands: f.Hands, Timestamp: now.UnixMilli()})
	return eff
}

// Do applies a UI action as if its button had been pressed. An export
// action that fails to write returns the error alongside the effects.
func (a *App) Do(action ui.Action) (sculpt.Effects, error) {
	a.sessionMu.Lock()
	eff := a.session.Apply(action)
	err := a.afterEffects(&eff, time.Now())
	a.sessionMu.Unlock()

	a.hub.publish(Event{Effects: &eff, Timestamp: time.Now().UnixMilli()})
	return eff, err
}

// afterEffects carries out the side effects a step asked for.
func (a *App) afterEffects(eff *sculpt.Effects, now time.Time) error {
	var err error
	if eff.ExportRequested {
		if _, err = a.exportLocked(now); err != nil {
			if errors.Is(err, render.ErrNothingToExport) {
				eff.Notice = sculpt.NoticeNothingToExport
			} else {
				log.Printf("Export failed: %v", err)
				eff.Notice = "Export failed"
			}
		}
	}
	if eff.Committed != "" {
		a.runHooks(store.EventCommit, plugin.Request{
			Event: store.EventCommit,
			Shape: a.shapeInfo(),
		})
	}
	return err
}

// Export renders the scene and writes it to the export directory.
func (a *App) Export() (*store.Export, error) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	return a.exportLocked(time.Now())
}

func (a *App) exportLocked(now time.Time) (*store.Export, error) {
	view := a.scene.View()
	img, err := a.renderer.Render(view)
	if err != nil {
		return nil, err
	}

	kind := a.session.Shape().Kind
	dir := a.config.Settings.Export.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, render.FileName(kind, now, a.format))
	if err := render.WriteFile(path, img, a.format); err != nil {
		return nil, err
	}

	solids := len(view.Placed)
	if view.Editing != nil {
		solids++
	}
	rec := &store.Export{
		ID:        uuid.New().String(),
		Kind:      string(kind),
		Format:    string(a.format),
		Path:      path,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Solids:    solids,
		CreatedAt: now,
	}
	if a.config.Store != nil {
		if err := a.config.Store.Exports().Create(rec); err != nil {
			log.Printf("Failed to record export: %v", err)
		}
	}
	log.Printf("Exported %s", path)

	a.runHooks(store.EventExport, plugin.Request{
		Event: store.EventExport,
		Shape: a.shapeInfo(),
		Export: &plugin.ExportInfo{
			ID:     rec.ID,
			Path:   rec.Path,
			Format: rec.Format,
			Width:  rec.Width,
			Height: rec.Height,
		},
	})
	return rec, nil
}

func (a *App) shapeInfo() *plugin.ShapeInfo {
	sh := a.session.Shape()
	return &plugin.ShapeInfo{
		Kind:   string(sh.Kind),
		Color:  sh.Color,
		Solids: a.scene.Len(),
	}
}

// SetColor changes the active colour.
func (a *App) SetColor(hex string) (sculpt.Effects, error) {
	a.sessionMu.Lock()
	err := a.session.SetColor(hex)
	var eff sculpt.Effects
	if err == nil {
		eff = a.session.Apply(ui.ActionNone)
		eff.ColorChanged = true
	}
	a.sessionMu.Unlock()

	if err != nil {
		return sculpt.Effects{}, err
	}
	a.hub.publish(Event{Effects: &eff, Timestamp: time.Now().UnixMilli()})
	return eff, nil
}

// Status returns the session summary.
func (a *App) Status() sculpt.Status {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	return a.session.Status()
}

// Tuning returns the live calibration values.
func (a *App) Tuning() sculpt.Tuning {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	return a.session.Tuning()
}

// Tune applies calibration values to the running session and saves them
// to the store.
func (a *App) Tune(t sculpt.Tuning) error {
	a.sessionMu.Lock()
	a.session.Tune(t)
	a.sessionMu.Unlock()

	if a.config.Store == nil {
		return nil
	}
	repo := a.config.Store.Settings()
	save := []struct {
		key string
		v   float64
	}{
		{store.SettingPinchThreshold, t.PinchThreshold},
		{store.SettingHoverRadius, t.HoverRadius},
		{store.SettingDwellMillis, float64(t.DwellDuration.Milliseconds())},
		{store.SettingOrbitSensitivity, t.OrbitSensitivity},
	}
	for _, s := range save {
		if s.v == 0 {
			continue
		}
		if err := repo.SetFloat(s.key, s.v); err != nil {
			return fmt.Errorf("save %s: %w", s.key, err)
		}
	}
	return nil
}

// PaletteSize returns the colour wheel's side length in pixels.
func (a *App) PaletteSize() int {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	return a.session.Wheel().Size()
}

// PaletteImage returns the colour wheel image.
func (a *App) PaletteImage() image.Image {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	return a.session.Wheel().Image()
}

// View returns a snapshot of the scene for rendering.
func (a *App) View() scene.View {
	return a.scene.View()
}
