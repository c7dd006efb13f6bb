package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "handsculpt-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettingsRepository_SetGet(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get(SettingDwellMillis); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := repo.Set(SettingDwellMillis, "3000"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := repo.Set(SettingDwellMillis, "2500"); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}

	got, err := repo.Get(SettingDwellMillis)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got != "2500" {
		t.Errorf("expected 2500, got %s", got)
	}
}

func TestSettingsRepository_Float(t *testing.T) {
	repo := newTestStore(t).Settings()

	if err := repo.SetFloat(SettingPinchThreshold, 0.045); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	got, err := repo.GetFloat(SettingPinchThreshold)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if got != 0.045 {
		t.Errorf("expected 0.045, got %v", got)
	}

	if err := repo.Set(SettingHoverRadius, "wide"); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if _, err := repo.GetFloat(SettingHoverRadius); err == nil {
		t.Error("expected parse error for non-numeric value")
	}
}

func TestSettingsRepository_AllAndDelete(t *testing.T) {
	repo := newTestStore(t).Settings()

	repo.Set(SettingHoverRadius, "40")
	repo.Set(SettingOrbitSensitivity, "0.005")

	all, err := repo.All()
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 2 || all[SettingHoverRadius] != "40" {
		t.Errorf("unexpected settings: %v", all)
	}

	if err := repo.Delete(SettingHoverRadius); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if err := repo.Delete(SettingHoverRadius); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestExportRepository_CreateGet(t *testing.T) {
	repo := newTestStore(t).Exports()

	e := &Export{
		ID:     "exp-1",
		Kind:   "cone",
		Format: "png",
		Path:   "/tmp/cone_1.png",
		Width:  1280,
		Height: 720,
		Solids: 2,
	}
	if err := repo.Create(e); err != nil {
		t.Fatalf("failed to create export: %v", err)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := repo.GetByID("exp-1")
	if err != nil {
		t.Fatalf("failed to get export: %v", err)
	}
	if got.Kind != "cone" || got.Path != e.Path || got.Width != 1280 || got.Height != 720 || got.Solids != 2 {
		t.Errorf("unexpected export: %+v", got)
	}

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExportRepository_RejectsUnknownFormat(t *testing.T) {
	repo := newTestStore(t).Exports()

	err := repo.Create(&Export{ID: "bad", Kind: "cube", Format: "gif", Path: "x.gif", Width: 1, Height: 1})
	if err == nil {
		t.Error("expected check constraint to reject gif")
	}
}

func TestExportRepository_ListNewestFirst(t *testing.T) {
	repo := newTestStore(t).Exports()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		err := repo.Create(&Export{
			ID:        id,
			Kind:      "cube",
			Format:    "webp",
			Path:      id + ".webp",
			Width:     10,
			Height:    10,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("failed to create export %s: %v", id, err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("unexpected order: %v", ids(all))
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "c" {
		t.Errorf("unexpected limited list: %v", ids(limited))
	}

	if err := repo.Delete("b"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if err := repo.Delete("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func ids(exports []*Export) []string {
	out := make([]string, len(exports))
	for i, e := range exports {
		out[i] = e.ID
	}
	return out
}

func TestHookRepository(t *testing.T) {
	repo := newTestStore(t).Hooks()

	hooks := []*Hook{
		{ID: "h1", Event: EventExport, PluginName: "gallery", ActionName: "copy", Config: json.RawMessage(`{"dir":"/tmp/g"}`), Enabled: true},
		{ID: "h2", Event: EventExport, PluginName: "gallery", ActionName: "copy", Enabled: false},
		{ID: "h3", Event: EventCommit, PluginName: "gallery", ActionName: "copy", Enabled: true},
	}
	for _, h := range hooks {
		if err := repo.Create(h); err != nil {
			t.Fatalf("failed to create hook %s: %v", h.ID, err)
		}
	}

	t.Run("get by id", func(t *testing.T) {
		h, err := repo.GetByID("h2")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if h.Enabled {
			t.Error("h2 should be disabled")
		}
		if string(h.Config) != "{}" {
			t.Errorf("expected default config {}, got %s", h.Config)
		}
	})

	t.Run("list by event skips disabled", func(t *testing.T) {
		got, err := repo.ListByEvent(EventExport)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(got) != 1 || got[0].ID != "h1" {
			t.Fatalf("expected only h1, got %d hooks", len(got))
		}
		if string(got[0].Config) != `{"dir":"/tmp/g"}` {
			t.Errorf("unexpected config %s", got[0].Config)
		}
	})

	t.Run("update", func(t *testing.T) {
		h, _ := repo.GetByID("h2")
		h.Enabled = true
		if err := repo.Update(h); err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		got, _ := repo.ListByEvent(EventExport)
		if len(got) != 2 {
			t.Errorf("expected 2 enabled export hooks, got %d", len(got))
		}
		if err := repo.Update(&Hook{ID: "missing"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.Delete("h3"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		all, _ := repo.List()
		if len(all) != 2 {
			t.Errorf("expected 2 hooks left, got %d", len(all))
		}
		if err := repo.Delete("h3"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
