package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/handsculpt/internal/capture"
	"github.com/ayusman/handsculpt/internal/config"
	"github.com/ayusman/handsculpt/internal/detector"
	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/render"
	"github.com/ayusman/handsculpt/internal/sculpt"
	"github.com/ayusman/handsculpt/internal/store"
	"github.com/ayusman/handsculpt/internal/ui"
)

func testSettings(tmpDir string) config.Config {
	s := config.Default()
	s.DataDir = tmpDir
	s.PluginDir = filepath.Join(tmpDir, "plugins")
	s.Export.Dir = filepath.Join(tmpDir, "exports")
	s.Export.Supersample = 1
	s.Viewport = gesture.Viewport{Width: 320, Height: 180}
	return s
}

func newTestApp(t *testing.T) (*App, *store.Store, string) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "handsculpt-app-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	st, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	a := New(Config{
		Settings: testSettings(tmpDir),
		Store:    st,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	return a, st, tmpDir
}

func TestApp_HandleFrameWithoutHands(t *testing.T) {
	a, _, _ := newTestApp(t)

	eff := a.HandleFrame(detector.Frame{})
	if eff.Mode != sculpt.ModeIdle {
		t.Errorf("expected idle mode, got %s", eff.Mode)
	}
	if eff.Kind != "cube" {
		t.Errorf("expected cube, got %s", eff.Kind)
	}
}

func TestApp_DoExportWritesFileAndRecord(t *testing.T) {
	a, st, tmpDir := newTestApp(t)

	eff, err := a.Do(ui.ActionExport)
	if err != nil {
		t.Fatalf("Do(export) error = %v", err)
	}
	if !eff.ExportRequested {
		t.Fatal("expected export to be requested")
	}

	exports, err := st.Exports().List(0)
	if err != nil {
		t.Fatalf("failed to list exports: %v", err)
	}
	if len(exports) != 1 {
		t.Fatalf("expected 1 export record, got %d", len(exports))
	}
	rec := exports[0]
	if filepath.Dir(rec.Path) != filepath.Join(tmpDir, "exports") {
		t.Errorf("unexpected export dir: %s", rec.Path)
	}
	if !strings.HasPrefix(filepath.Base(rec.Path), "cube_") || !strings.HasSuffix(rec.Path, ".png") {
		t.Errorf("unexpected export name: %s", rec.Path)
	}
	if rec.Width != 320 || rec.Height != 180 || rec.Solids != 1 {
		t.Errorf("unexpected export record: %+v", rec)
	}
	if _, err := os.Stat(rec.Path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestApp_ExportFailsOnUnwritableDir(t *testing.T) {
	a, _, tmpDir := newTestApp(t)

	blocker := filepath.Join(tmpDir, "exports")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0644); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}

	eff, err := a.Do(ui.ActionExport)
	if err == nil {
		t.Fatal("expected export error")
	}
	if eff.Notice == "" {
		t.Error("expected a notice for the failed export")
	}
}

func TestApp_CommitAndStatus(t *testing.T) {
	a, _, _ := newTestApp(t)

	if _, err := a.Do(ui.ActionCycle); err != nil {
		t.Fatalf("Do(cycle) error = %v", err)
	}
	eff, _ := a.Do(ui.ActionCommit)
	if eff.Committed == "" {
		t.Fatal("expected a committed ID")
	}

	st := a.Status()
	if st.Kind != "pyramid" {
		t.Errorf("expected pyramid after cycle, got %s", st.Kind)
	}
	if st.Placed != 1 || a.Scene().Len() != 1 {
		t.Errorf("expected one placed solid, got %d", st.Placed)
	}
}

func TestApp_SetColor(t *testing.T) {
	a, _, _ := newTestApp(t)

	eff, err := a.SetColor("#00FF00")
	if err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}
	if !eff.ColorChanged || eff.Color != "#00ff00" {
		t.Errorf("unexpected effects: %+v", eff)
	}
	if _, err := a.SetColor("green-ish"); err == nil {
		t.Error("expected error for invalid colour")
	}
}

func TestApp_TunePersistsCalibration(t *testing.T) {
	a, st, tmpDir := newTestApp(t)

	err := a.Tune(sculpt.Tuning{PinchThreshold: 0.07, DwellDuration: 2 * time.Second})
	if err != nil {
		t.Fatalf("Tune() error = %v", err)
	}
	if got := a.Tuning(); got.PinchThreshold != 0.07 || got.DwellDuration != 2*time.Second {
		t.Errorf("tuning not applied: %+v", got)
	}

	// A fresh app on the same store starts with the saved calibration.
	b := New(Config{
		Settings: testSettings(tmpDir),
		Store:    st,
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	got := b.Tuning()
	if got.PinchThreshold != 0.07 || got.DwellDuration != 2*time.Second {
		t.Errorf("calibration not loaded: %+v", got)
	}
	if got.HoverRadius != 40 {
		t.Errorf("unsaved hover radius should keep default, got %v", got.HoverRadius)
	}
}

func TestApp_Subscribe(t *testing.T) {
	a, _, _ := newTestApp(t)

	events, unsubscribe := a.Subscribe()
	a.Do(ui.ActionReset)

	select {
	case ev := <-events:
		if ev.Effects == nil || ev.Effects.Action != ui.ActionReset {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-events; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	if a.hub.len() != 0 {
		t.Errorf("expected no subscribers, got %d", a.hub.len())
	}
}

func TestApp_ExportRunsPluginHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	a, st, tmpDir := newTestApp(t)

	// A plugin that records each request it receives.
	pluginDir := filepath.Join(tmpDir, "plugins", "recorder")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	manifest := `{"name":"recorder","version":"1.0.0","executable":"run.sh","actions":["export","note"]}`
	os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0644)
	script := "#!/bin/sh\ncat > \"$(mktemp ./req.XXXXXX)\"\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(pluginDir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	if err := a.DiscoverPlugins(); err != nil {
		t.Fatalf("DiscoverPlugins() error = %v", err)
	}

	err := st.Hooks().Create(&store.Hook{
		ID:         "h1",
		Event:      store.EventExport,
		PluginName: "recorder",
		ActionName: "note",
		Config:     json.RawMessage(`{"tag":"x"}`),
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("failed to create hook: %v", err)
	}

	rec, err := a.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	a.WaitHooks()

	files, _ := filepath.Glob(filepath.Join(pluginDir, "req.*"))
	if len(files) != 2 {
		t.Fatalf("expected 2 plugin calls, got %d", len(files))
	}
	actions := map[string]bool{}
	for _, f := range files {
		data, _ := os.ReadFile(f)
		var req struct {
			Action string `json:"action"`
			Export struct {
				Path string `json:"path"`
			} `json:"export"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			t.Fatalf("bad request %s: %v", data, err)
		}
		if req.Export.Path != rec.Path {
			t.Errorf("expected export path %s, got %s", rec.Path, req.Export.Path)
		}
		actions[req.Action] = true
	}
	if !actions["export"] || !actions["note"] {
		t.Errorf("expected export and note calls, got %v", actions)
	}
}

func TestApp_EnableToggle(t *testing.T) {
	a, _, _ := newTestApp(t)

	if a.IsEnabled() {
		t.Error("app should start disabled")
	}
	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Error("app should be enabled")
	}
}

func TestApp_StopWithoutStart(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.Stop()
	if a.Running() {
		t.Error("app should not be running")
	}
}

func TestApp_ExportNothingToExport(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.Scene().ClearEditing()

	if _, err := a.Export(); !errors.Is(err, render.ErrNothingToExport) {
		t.Errorf("expected nothing-to-export error, got %v", err)
	}
}

func TestFrameRate_Observe(t *testing.T) {
	start := time.Unix(1700000000, 0)
	idleAfter := StillnessTimeout
	r := frameRate{lastMotion: start}

	steps := []struct {
		name   string
		moving bool
		at     time.Duration
		want   int
	}{
		{"still while idle", false, 0, 0},
		{"motion activates", true, 100 * time.Millisecond, ActiveFPS},
		{"more motion stays", true, 200 * time.Millisecond, 0},
		{"brief stillness stays", false, 200*time.Millisecond + idleAfter/2, 0},
		{"long stillness idles", false, 200*time.Millisecond + idleAfter + time.Millisecond, IdleFPS},
		{"still while idle again", false, 10 * idleAfter, 0},
	}
	for _, s := range steps {
		if got := r.observe(s.moving, start.Add(s.at)); got != s.want {
			t.Errorf("%s: observe() = %d, want %d", s.name, got, s.want)
		}
	}
}
