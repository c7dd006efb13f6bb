package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/handsculpt/internal/store"
)

// ExportHandler serves the export log.
//
//	GET    /api/exports?limit=N
//	GET    /api/exports/{id}
//	GET    /api/exports/{id}/image
//	DELETE /api/exports/{id}        forgets the record, keeps the file
type ExportHandler struct {
	store *store.Store
}

// NewExportHandler creates a new ExportHandler with the given store.
func NewExportHandler(s *store.Store) *ExportHandler {
	return &ExportHandler{store: s}
}

type listExportsResponse struct {
	Exports []exportResponse `json:"exports"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/exports")

	switch len(parts) {
	case 0:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
	case 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, parts[0])
		case http.MethodDelete:
			h.delete(w, r, parts[0])
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case 2:
		if parts[1] != "image" {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.image(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *ExportHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	exports, err := h.store.Exports().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list exports")
		return
	}

	response := listExportsResponse{Exports: make([]exportResponse, 0, len(exports))}
	for _, e := range exports {
		response.Exports = append(response.Exports, toExportResponse(e))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *ExportHandler) lookup(w http.ResponseWriter, id string) (*store.Export, bool) {
	e, err := h.store.Exports().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Export not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get export")
		return nil, false
	}
	return e, true
}

func (h *ExportHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	if e, ok := h.lookup(w, id); ok {
		writeJSON(w, http.StatusOK, toExportResponse(e))
	}
}

func (h *ExportHandler) image(w http.ResponseWriter, r *http.Request, id string) {
	e, ok := h.lookup(w, id)
	if !ok {
		return
	}
	http.ServeFile(w, r, e.Path)
}

func (h *ExportHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Exports().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Export not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete export")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
