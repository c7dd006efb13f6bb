package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// writeManifest creates dir/sub/plugin.json with the given content. A
// Manifest value is marshalled; a string is written verbatim.
func writeManifest(t *testing.T, dir, sub string, content interface{}) {
	t.Helper()

	pluginDir := filepath.Join(dir, sub)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	var data []byte
	switch c := content.(type) {
	case string:
		data = []byte(c)
	default:
		b, err := json.Marshal(c)
		if err != nil {
			t.Fatalf("failed to marshal manifest: %v", err)
		}
		data = b
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestManager_Discover(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "handsculpt-plugin-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	writeManifest(t, tmpDir, "gallery", Manifest{
		Name:        "gallery",
		Version:     "1.0.0",
		Description: "Copies exports",
		Executable:  "gallery",
		Actions:     []string{"export", "copy"},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	p := plugins[0]
	if p.Manifest.Name != "gallery" || p.Manifest.Version != "1.0.0" {
		t.Errorf("unexpected manifest: %+v", p.Manifest)
	}
	if p.Path != filepath.Join(tmpDir, "gallery") {
		t.Errorf("Path = %q", p.Path)
	}
	if p.Executable != filepath.Join(tmpDir, "gallery", "gallery") {
		t.Errorf("Executable = %q", p.Executable)
	}
	if !p.Supports("copy") || p.Supports("reveal") {
		t.Errorf("unexpected Supports results for actions %v", p.Manifest.Actions)
	}
}

func TestManager_Discover_SkipsBrokenPlugins(t *testing.T) {
	tmpDir := t.TempDir()

	writeManifest(t, tmpDir, "good", Manifest{Name: "good", Executable: "run", Actions: []string{"export"}})
	writeManifest(t, tmpDir, "bad-json", `{ not json`)
	writeManifest(t, tmpDir, "no-name", Manifest{Executable: "run"})
	writeManifest(t, tmpDir, "no-exec", Manifest{Name: "no-exec"})
	writeManifest(t, tmpDir, "escape", Manifest{Name: "escape", Executable: "../../bin/sh"})
	if err := os.MkdirAll(filepath.Join(tmpDir, "no-manifest"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "stray-file"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 || plugins[0].Manifest.Name != "good" {
		names := make([]string, len(plugins))
		for i, p := range plugins {
			names[i] = p.Manifest.Name
		}
		t.Errorf("expected only the good plugin, got %v", names)
	}
}

func TestLoadPlugin_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "no-name", Manifest{Executable: "run"})

	if _, err := loadPlugin(filepath.Join(tmpDir, "no-name")); !errors.Is(err, ErrInvalidManifest) {
		t.Errorf("loadPlugin() error = %v, want ErrInvalidManifest", err)
	}
	if _, err := loadPlugin(filepath.Join(tmpDir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("loadPlugin() error = %v, want not exist", err)
	}
}

func TestManager_Discover_MissingOrEmptyDir(t *testing.T) {
	tests := []struct {
		name string
		dir  string
	}{
		{"missing", filepath.Join(t.TempDir(), "nope")},
		{"empty", t.TempDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewManager(tt.dir)
			if err := manager.Discover(); err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			if n := len(manager.List()); n != 0 {
				t.Errorf("expected no plugins, got %d", n)
			}
		})
	}
}

func TestManager_Discover_Replaces(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "first", Manifest{Name: "first", Executable: "run"})

	manager := NewManager(tmpDir)
	manager.Discover()

	if err := os.RemoveAll(filepath.Join(tmpDir, "first")); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, tmpDir, "second", Manifest{Name: "second", Executable: "run"})
	manager.Discover()

	if _, err := manager.Get("first"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("removed plugin still present: %v", err)
	}
	if _, err := manager.Get("second"); err != nil {
		t.Errorf("Get(second) error = %v", err)
	}
}

func TestManager_GetAndList(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		writeManifest(t, tmpDir, name, Manifest{Name: name, Executable: name})
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	p, err := manager.Get("mid")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Manifest.Name != "mid" {
		t.Errorf("Get() returned %q", p.Manifest.Name)
	}

	if _, err := manager.Get("missing"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrPluginNotFound", err)
	}

	list := manager.List()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if list[i].Manifest.Name != name {
			t.Errorf("List()[%d] = %s, want %s", i, list[i].Manifest.Name, name)
		}
	}

	if manager.PluginDir() != tmpDir {
		t.Errorf("PluginDir() = %q, want %q", manager.PluginDir(), tmpDir)
	}
}

func TestManager_ForAction(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "b-gallery", Manifest{Name: "b-gallery", Executable: "g", Actions: []string{"export", "reveal"}})
	writeManifest(t, tmpDir, "a-notes", Manifest{Name: "a-notes", Executable: "n", Actions: []string{"export", "commit"}})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	tests := []struct {
		action string
		want   []string
	}{
		{"export", []string{"a-notes", "b-gallery"}},
		{"commit", []string{"a-notes"}},
		{"reveal", []string{"b-gallery"}},
		{"undo", nil},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got := manager.ForAction(tt.action)
			if len(got) != len(tt.want) {
				t.Fatalf("ForAction(%q) returned %d plugins, want %d", tt.action, len(got), len(tt.want))
			}
			for i, name := range tt.want {
				if got[i].Manifest.Name != name {
					t.Errorf("ForAction(%q)[%d] = %s, want %s", tt.action, i, got[i].Manifest.Name, name)
				}
			}
		})
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"new plugin dir", fsnotify.Event{Name: "/p/gallery", Op: fsnotify.Create}, true},
		{"removed plugin", fsnotify.Event{Name: "/p/gallery", Op: fsnotify.Remove}, true},
		{"manifest edited", fsnotify.Event{Name: "/p/gallery/plugin.json", Op: fsnotify.Write}, true},
		{"binary rebuilt", fsnotify.Event{Name: "/p/gallery/gallery", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/p/gallery/gallery", Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevant(tt.ev); got != tt.want {
				t.Errorf("relevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManager_Watch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watcher test in short mode")
	}

	tmpDir := t.TempDir()
	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- manager.Watch(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	}()

	// Give the watcher a moment to register before installing.
	time.Sleep(100 * time.Millisecond)
	writeManifest(t, tmpDir, "late", Manifest{Name: "late", Executable: "run"})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := manager.Get("late"); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("plugin installed after Watch was not discovered")
}

func TestManager_Watch_MissingDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "absent"))
	if err := manager.Watch(context.Background()); err != nil {
		t.Errorf("Watch() on a missing dir = %v, want nil", err)
	}
}
