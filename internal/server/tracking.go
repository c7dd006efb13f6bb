package server

import (
	"encoding/json"
	"net/http"
)

// Tracker toggles hand tracking.
type Tracker interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// TrackingHandler serves GET and POST /api/tracking.
type TrackingHandler struct {
	tracker Tracker
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(t Tracker) *TrackingHandler {
	return &TrackingHandler{tracker: t}
}

type trackingBody struct {
	Enabled bool `json:"enabled"`
}

// ServeHTTP implements the http.Handler interface.
func (h *TrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req trackingBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		h.tracker.SetEnabled(req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, trackingBody{Enabled: h.tracker.IsEnabled()})
}
