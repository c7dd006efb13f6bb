package api

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"

	"github.com/ayusman/handsculpt/internal/palette"
	"github.com/ayusman/handsculpt/internal/render"
	"github.com/ayusman/handsculpt/internal/scene"
	"github.com/ayusman/handsculpt/internal/sculpt"
	"github.com/ayusman/handsculpt/internal/store"
	"github.com/ayusman/handsculpt/internal/ui"
)

// Sculptor is the session surface the handlers drive.
type Sculptor interface {
	Status() sculpt.Status
	View() scene.View
	Do(action ui.Action) (sculpt.Effects, error)
	SetColor(hex string) (sculpt.Effects, error)
	Export() (*store.Export, error)
	PaletteImage() image.Image
}

// SessionHandler serves /api/session.
//
//	GET  /api/session          status
//	GET  /api/session/scene    scene snapshot
//	POST /api/session/{action} cycle, undo, redo, reset, commit, export
//	PUT  /api/session/color    {"color": "#rrggbb"}
type SessionHandler struct {
	sculptor Sculptor
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(s Sculptor) *SessionHandler {
	return &SessionHandler{sculptor: s}
}

type colorRequest struct {
	Color string `json:"color"`
}

type exportResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Format    string `json:"format"`
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Solids    int    `json:"solids"`
	CreatedAt string `json:"created_at"`
}

func toExportResponse(e *store.Export) exportResponse {
	return exportResponse{
		ID:        e.ID,
		Kind:      e.Kind,
		Format:    e.Format,
		Path:      e.Path,
		Width:     e.Width,
		Height:    e.Height,
		Solids:    e.Solids,
		CreatedAt: formatTime(e.CreatedAt),
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/session")

	switch {
	case len(parts) == 0:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.sculptor.Status())

	case len(parts) == 1 && parts[0] == "scene":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.sculptor.View())

	case len(parts) == 1 && parts[0] == "color":
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.setColor(w, r)

	case len(parts) == 1:
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.action(w, parts[0])

	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) action(w http.ResponseWriter, name string) {
	action, ok := ui.ParseAction(name)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown action")
		return
	}

	if action == ui.ActionExport {
		rec, err := h.sculptor.Export()
		if err != nil {
			if errors.Is(err, render.ErrNothingToExport) {
				writeError(w, http.StatusConflict, sculpt.NoticeNothingToExport)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to export")
			return
		}
		writeJSON(w, http.StatusCreated, toExportResponse(rec))
		return
	}

	eff, err := h.sculptor.Do(action)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eff)
}

func (h *SessionHandler) setColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	eff, err := h.sculptor.SetColor(req.Color)
	if err != nil {
		if errors.Is(err, palette.ErrInvalidColor) {
			writeError(w, http.StatusBadRequest, "Invalid color")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to set color")
		return
	}
	writeJSON(w, http.StatusOK, eff)
}

// PaletteHandler serves the colour wheel as PNG at /api/palette.png.
type PaletteHandler struct {
	sculptor Sculptor
}

// NewPaletteHandler creates a new PaletteHandler.
func NewPaletteHandler(s Sculptor) *PaletteHandler {
	return &PaletteHandler{sculptor: s}
}

// ServeHTTP implements the http.Handler interface.
func (h *PaletteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=3600")
	if err := render.Encode(w, h.sculptor.PaletteImage(), render.FormatPNG); err != nil {
		http.Error(w, "Failed to encode palette", http.StatusInternalServerError)
	}
}
