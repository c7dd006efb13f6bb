package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/handsculpt/internal/sculpt"
)

// Tuner reads and changes live calibration.
type Tuner interface {
	Tuning() sculpt.Tuning
	Tune(t sculpt.Tuning) error
}

// SettingsHandler serves GET and PUT /api/settings.
type SettingsHandler struct {
	tuner Tuner
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(t Tuner) *SettingsHandler {
	return &SettingsHandler{tuner: t}
}

type settingsBody struct {
	PinchThreshold   float64 `json:"pinch_threshold"`
	HoverRadius      float64 `json:"hover_radius_px"`
	DwellMillis      int64   `json:"dwell_ms"`
	OrbitSensitivity float64 `json:"orbit_sensitivity"`
}

func toSettingsBody(t sculpt.Tuning) settingsBody {
	return settingsBody{
		PinchThreshold:   t.PinchThreshold,
		HoverRadius:      t.HoverRadius,
		DwellMillis:      t.DwellDuration.Milliseconds(),
		OrbitSensitivity: t.OrbitSensitivity,
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toSettingsBody(h.tuner.Tuning()))
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req settingsBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PinchThreshold < 0 || req.HoverRadius < 0 || req.DwellMillis < 0 || req.OrbitSensitivity < 0 {
		writeError(w, http.StatusBadRequest, "Settings must not be negative")
		return
	}

	err := h.tuner.Tune(sculpt.Tuning{
		PinchThreshold:   req.PinchThreshold,
		HoverRadius:      req.HoverRadius,
		DwellDuration:    time.Duration(req.DwellMillis) * time.Millisecond,
		OrbitSensitivity: req.OrbitSensitivity,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, toSettingsBody(h.tuner.Tuning()))
}
