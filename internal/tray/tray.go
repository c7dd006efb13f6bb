// Package tray provides the system tray menu for the handsculpt studio.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Status is what the tray shows about the session.
type Status struct {
	Kind   string
	Color  string
	Placed int
}

// Callbacks are invoked from the tray's event goroutine. Nil callbacks are
// skipped.
type Callbacks struct {
	Toggle func(enabled bool)
	Open   func()
	Export func()
	Quit   func()
}

// Tray is the menu-bar icon: a tracking toggle, two read-only session
// lines and the studio actions.
type Tray struct {
	cb Callbacks

	mu      sync.Mutex
	enabled bool
	status  Status
	items   map[string]*systray.MenuItem // nil until the menu is built
}

// New creates a Tray with tracking shown as enabled.
func New(cb Callbacks) *Tray {
	return &Tray{cb: cb, enabled: true}
}

// Run builds the menu and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.build, func() {})
}

// Quit stops the tray loop started by Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) build() {
	systray.SetTitle("Handsculpt")
	systray.SetTooltip("Handsculpt gesture sculpting")

	t.mu.Lock()
	items := map[string]*systray.MenuItem{
		"toggle": systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking"),
	}
	systray.AddSeparator()
	items["shape"] = systray.AddMenuItem(shapeTitle(t.status), "Shape being edited")
	items["placed"] = systray.AddMenuItem(placedTitle(t.status), "Solids placed in the scene")
	items["shape"].Disable()
	items["placed"].Disable()
	systray.AddSeparator()
	items["open"] = systray.AddMenuItem("Open Studio...", "Open the studio in a browser")
	items["export"] = systray.AddMenuItem("Export Scene", "Save the scene as an image")
	systray.AddSeparator()
	items["quit"] = systray.AddMenuItem("Quit", "Quit Handsculpt")
	t.items = items
	t.mu.Unlock()

	go t.loop(items)
}

func (t *Tray) loop(items map[string]*systray.MenuItem) {
	for {
		select {
		case <-items["toggle"].ClickedCh:
			t.toggle()
		case <-items["open"].ClickedCh:
			fire(t.cb.Open)
		case <-items["export"].ClickedCh:
			fire(t.cb.Export)
		case <-items["quit"].ClickedCh:
			fire(t.cb.Quit)
			systray.Quit()
			return
		}
	}
}

func fire(fn func()) {
	if fn != nil {
		fn()
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func shapeTitle(s Status) string {
	switch {
	case s.Kind == "":
		return "Shape: none"
	case s.Color == "":
		return "Shape: " + s.Kind
	}
	return fmt.Sprintf("Shape: %s %s", s.Kind, s.Color)
}

func placedTitle(s Status) string {
	return fmt.Sprintf("Placed: %d", s.Placed)
}

// retitle must be called with t.mu held.
func (t *Tray) retitle(name, title string) {
	if item := t.items[name]; item != nil {
		item.SetTitle(title)
	}
}

// toggle flips tracking and reports the new state to the Toggle callback,
// outside the lock.
func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.retitle("toggle", toggleTitle(enabled))
	t.mu.Unlock()

	if t.cb.Toggle != nil {
		t.cb.Toggle(enabled)
	}
}

// SetStatus updates the session lines in the menu.
func (t *Tray) SetStatus(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = s
	t.retitle("shape", shapeTitle(s))
	t.retitle("placed", placedTitle(s))
}

// SetEnabled updates the tracking state without firing the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	t.retitle("toggle", toggleTitle(enabled))
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}
