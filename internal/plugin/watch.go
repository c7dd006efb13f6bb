package plugin

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// rescanDelay coalesces the burst of events an install or removal makes.
const rescanDelay = 200 * time.Millisecond

// Watch re-runs Discover whenever a plugin directory or manifest under the
// plugin directory is created, changed, renamed or removed. It blocks
// until ctx is done. A missing plugin directory is not watched and Watch
// returns nil at once.
func (m *Manager) Watch(ctx context.Context) error {
	if _, err := os.Stat(m.dir); os.IsNotExist(err) {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := m.watchTree(w); err != nil {
		return err
	}

	rescan := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// New plugin directories need their own watch.
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					w.Add(ev.Name)
				}
			}
			if timer == nil {
				timer = time.AfterFunc(rescanDelay, func() {
					select {
					case rescan <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(rescanDelay)
			}

		case <-rescan:
			if err := m.Discover(); err != nil {
				log.Printf("Plugin rescan failed: %v", err)
				continue
			}
			log.Printf("Plugins reloaded: %d available", len(m.List()))

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("Plugin watcher: %v", err)
		}
	}
}

// watchTree watches the plugin directory and each plugin subdirectory.
func (m *Manager) watchTree(w *fsnotify.Watcher) error {
	if err := w.Add(m.dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(m.dir, e.Name())); err != nil {
				log.Printf("Not watching plugin %s: %v", e.Name(), err)
			}
		}
	}
	return nil
}

// relevant drops chmod-only events and writes to files other than a
// manifest.
func relevant(ev fsnotify.Event) bool {
	switch {
	case ev.Op == fsnotify.Chmod:
		return false
	case ev.Has(fsnotify.Write):
		return filepath.Base(ev.Name) == ManifestFile
	}
	return true
}
