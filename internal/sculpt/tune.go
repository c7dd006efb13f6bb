package sculpt

import "time"

// Tuning is the subset of Config that can change while a session runs.
// Zero fields keep the current value.
type Tuning struct {
	PinchThreshold   float64       `json:"pinch_threshold,omitempty"`
	HoverRadius      float64       `json:"hover_radius_px,omitempty"`
	DwellDuration    time.Duration `json:"dwell_duration,omitempty"`
	OrbitSensitivity float64       `json:"orbit_sensitivity,omitempty"`
}

// Tune applies t. A changed dwell duration cancels any dwell in progress.
func (s *Session) Tune(t Tuning) {
	if t.PinchThreshold > 0 {
		s.cfg.PinchThreshold = t.PinchThreshold
		s.classifier.PinchThreshold = t.PinchThreshold
	}
	if t.HoverRadius > 0 {
		s.cfg.HoverRadius = t.HoverRadius
	}
	if t.DwellDuration > 0 && t.DwellDuration != s.cfg.DwellDuration {
		s.cfg.DwellDuration = t.DwellDuration
		s.dwell = NewDwell(t.DwellDuration)
		s.progress = 0
	}
	if t.OrbitSensitivity != 0 {
		s.cfg.OrbitSensitivity = t.OrbitSensitivity
	}
}

// Tuning returns the current live-tunable values.
func (s *Session) Tuning() Tuning {
	return Tuning{
		PinchThreshold:   s.cfg.PinchThreshold,
		HoverRadius:      s.cfg.HoverRadius,
		DwellDuration:    s.cfg.DwellDuration,
		OrbitSensitivity: s.cfg.OrbitSensitivity,
	}
}
