// Package history keeps a bounded, linear undo/redo log of editable shape
// states.
package history

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ayusman/handsculpt/internal/shape"
)

// DefaultLimit is the number of snapshots kept before the oldest is dropped.
const DefaultLimit = 50

// Snapshot is an immutable copy of an editable shape.
type Snapshot struct {
	Kind    shape.Kind   `json:"kind"`
	Color   string       `json:"color"`
	Markers []mgl64.Vec3 `json:"markers"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	markers := make([]mgl64.Vec3, len(s.Markers))
	copy(markers, s.Markers)
	return Snapshot{Kind: s.Kind, Color: s.Color, Markers: markers}
}

// Manager is a linear history with a cursor. Committing after an undo
// discards the redo tail. It is not safe for concurrent use.
type Manager struct {
	limit   int
	entries []Snapshot
	cursor  int
}

// New creates a Manager holding at most limit snapshots. A non-positive
// limit uses DefaultLimit.
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit, cursor: -1}
}

// Commit records s as the newest state.
func (m *Manager) Commit(s Snapshot) {
	m.entries = append(m.entries[:m.cursor+1], s.Clone())
	if len(m.entries) > m.limit {
		m.entries = m.entries[1:]
		return
	}
	m.cursor++
}

// Undo steps back one snapshot and returns it. It reports false when
// already at the oldest entry.
func (m *Manager) Undo() (Snapshot, bool) {
	if !m.CanUndo() {
		return Snapshot{}, false
	}
	m.cursor--
	return m.entries[m.cursor].Clone(), true
}

// Redo steps forward one snapshot and returns it. It reports false when
// already at the newest entry.
func (m *Manager) Redo() (Snapshot, bool) {
	if !m.CanRedo() {
		return Snapshot{}, false
	}
	m.cursor++
	return m.entries[m.cursor].Clone(), true
}

// Current returns the snapshot under the cursor.
func (m *Manager) Current() (Snapshot, bool) {
	if m.cursor < 0 {
		return Snapshot{}, false
	}
	return m.entries[m.cursor].Clone(), true
}

// CanUndo reports whether Undo would move the cursor.
func (m *Manager) CanUndo() bool {
	return m.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (m *Manager) CanRedo() bool {
	return m.cursor < len(m.entries)-1
}

// Len returns the number of stored snapshots.
func (m *Manager) Len() int {
	return len(m.entries)
}

// Cursor returns the index of the current snapshot, or -1 when empty.
func (m *Manager) Cursor() int {
	return m.cursor
}

// Limit returns the maximum number of snapshots kept.
func (m *Manager) Limit() int {
	return m.limit
}

// Clear drops every snapshot.
func (m *Manager) Clear() {
	m.entries = nil
	m.cursor = -1
}
