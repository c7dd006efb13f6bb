package ui

// Action is a UI command produced by a button hit.
type Action string

const (
	ActionNone   Action = ""
	ActionCycle  Action = "cycle"
	ActionUndo   Action = "undo"
	ActionRedo   Action = "redo"
	ActionReset  Action = "reset"
	ActionExport Action = "export"
	ActionCommit Action = "commit"
)

// ParseAction converts a name into a button action.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionCycle, ActionUndo, ActionRedo, ActionReset, ActionExport, ActionCommit:
		return a, true
	}
	return ActionNone, false
}

// Availability says which conditional buttons are enabled this frame.
type Availability struct {
	Undo bool
	Redo bool
}

// Result is the outcome of routing one fingertip position.
type Result struct {
	// Hit is the element under the fingertip, even when it did not fire.
	Hit Action
	// Fired is true on the first frame the fingertip enters Hit.
	Fired bool
}

// Consumed reports whether the fingertip is over a button, in which case
// the frame must not reach the manipulation logic.
func (r Result) Consumed() bool {
	return r.Hit != ActionNone
}

// Router hit-tests buttons in priority order and fires each one once per
// entry. Leaving every button re-arms it.
type Router struct {
	layout Layout
	armed  bool
}

// NewRouter creates an armed Router over layout.
func NewRouter(layout Layout) *Router {
	return &Router{layout: layout, armed: true}
}

// Layout returns the router's layout.
func (r *Router) Layout() Layout {
	return r.layout
}

// Route hit-tests (x, y). Undo and redo are only targets while available.
func (r *Router) Route(x, y float64, avail Availability) Result {
	hit := r.hitTest(x, y, avail)
	if hit == ActionNone {
		r.armed = true
		return Result{}
	}
	fired := r.armed
	r.armed = false
	return Result{Hit: hit, Fired: fired}
}

// Reset forgets the current press, as if the fingertip left every button.
func (r *Router) Reset() {
	r.armed = true
}

func (r *Router) hitTest(x, y float64, avail Availability) Action {
	targets := []struct {
		rect    Rect
		action  Action
		enabled bool
	}{
		{r.layout.ShapeCycle, ActionCycle, true},
		{r.layout.Undo, ActionUndo, avail.Undo},
		{r.layout.Redo, ActionRedo, avail.Redo},
		{r.layout.Reset, ActionReset, true},
		{r.layout.Export, ActionExport, true},
		{r.layout.Commit, ActionCommit, true},
	}
	for _, t := range targets {
		if t.enabled && !t.rect.Empty() && t.rect.Contains(x, y) {
			return t.action
		}
	}
	return ActionNone
}
