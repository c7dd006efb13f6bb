package sculpt

import "time"

// Dwell measures how long something has stayed continuously inside a
// target. Leaving the target resets it.
type Dwell struct {
	duration time.Duration
	start    time.Time
	active   bool
}

// NewDwell creates a Dwell that completes after d.
func NewDwell(d time.Duration) *Dwell {
	return &Dwell{duration: d}
}

// Update feeds one observation. It returns the progress in [0, 1] and
// reports done once the dwell has lasted the full duration, after which the
// timer starts over.
func (d *Dwell) Update(inside bool, now time.Time) (progress float64, done bool) {
	if !inside {
		d.Reset()
		return 0, false
	}
	if !d.active {
		d.active = true
		d.start = now
	}
	elapsed := now.Sub(d.start)
	if elapsed >= d.duration {
		d.Reset()
		return 1, true
	}
	if elapsed < 0 {
		return 0, false
	}
	return float64(elapsed) / float64(d.duration), false
}

// Reset cancels any dwell in progress.
func (d *Dwell) Reset() {
	d.active = false
	d.start = time.Time{}
}

// Active reports whether a dwell is in progress.
func (d *Dwell) Active() bool {
	return d.active
}

// Duration returns the time needed to complete a dwell.
func (d *Dwell) Duration() time.Duration {
	return d.duration
}
