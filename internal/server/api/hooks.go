package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ayusman/handsculpt/internal/plugin"
	"github.com/ayusman/handsculpt/internal/store"
)

// HookHandler serves /api/hooks: bindings from a session event to a
// plugin action that runs after it.
type HookHandler struct {
	store   *store.Store
	plugins *plugin.Manager
}

// NewHookHandler creates a HookHandler. With a nil plugins manager plugin
// names and actions are stored unchecked.
func NewHookHandler(s *store.Store, plugins *plugin.Manager) *HookHandler {
	return &HookHandler{store: s, plugins: plugins}
}

// ServeHTTP implements the http.Handler interface.
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/hooks")

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.list(w)
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.create(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		if hk := h.load(w, parts[0]); hk != nil {
			writeJSON(w, http.StatusOK, toHookResponse(hk))
		}
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.update(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.delete(w, parts[0])
	case len(parts) > 1:
		writeError(w, http.StatusNotFound, "Not found")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// hookRequest is the body of both POST and PUT. On PUT, absent fields keep
// their stored value.
type hookRequest struct {
	Event      string          `json:"event"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type hookResponse struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

var emptyConfig = json.RawMessage("{}")

func toHookResponse(hk *store.Hook) hookResponse {
	resp := hookResponse{
		ID:         hk.ID,
		Event:      hk.Event,
		PluginName: hk.PluginName,
		ActionName: hk.ActionName,
		Config:     hk.Config,
		Enabled:    hk.Enabled,
		CreatedAt:  formatTime(hk.CreatedAt),
	}
	if resp.Config == nil {
		resp.Config = emptyConfig
	}
	return resp
}

// badRequest is a validation failure reported verbatim to the client.
type badRequest string

func (e badRequest) Error() string { return string(e) }

// apply merges req into hk and checks the result.
func (h *HookHandler) apply(hk *store.Hook, req hookRequest) error {
	if req.Event != "" {
		hk.Event = req.Event
	}
	if req.PluginName != "" {
		hk.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		hk.ActionName = req.ActionName
	}
	if req.Config != nil {
		hk.Config = req.Config
	}
	if req.Enabled != nil {
		hk.Enabled = *req.Enabled
	}

	switch {
	case hk.Event != store.EventExport && hk.Event != store.EventCommit:
		return badRequest("event must be export or commit")
	case hk.PluginName == "":
		return badRequest("plugin_name is required")
	case hk.ActionName == "":
		return badRequest("action_name is required")
	}

	if h.plugins == nil {
		return nil
	}
	p, err := h.plugins.Get(hk.PluginName)
	if err != nil {
		return badRequest("Plugin not found")
	}
	if !p.Supports(hk.ActionName) {
		return badRequest("Plugin does not support action")
	}
	return nil
}

// load fetches hook id, writing the error response and returning nil when
// it cannot.
func (h *HookHandler) load(w http.ResponseWriter, id string) *store.Hook {
	hk, err := h.store.Hooks().GetByID(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Hook not found")
		return nil
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return nil
	}
	return hk
}

func (h *HookHandler) list(w http.ResponseWriter) {
	hooks, err := h.store.Hooks().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hooks")
		return
	}

	resp := listHooksResponse{Hooks: make([]hookResponse, 0, len(hooks))}
	for _, hk := range hooks {
		resp.Hooks = append(resp.Hooks, toHookResponse(hk))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	hk := &store.Hook{ID: uuid.New().String(), Config: emptyConfig, Enabled: true}
	if err := h.apply(hk, req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Hooks().Create(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create hook")
		return
	}
	writeJSON(w, http.StatusCreated, toHookResponse(hk))
}

func (h *HookHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	hk := h.load(w, id)
	if hk == nil {
		return
	}

	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := h.apply(hk, req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Hooks().Update(hk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update hook")
		return
	}
	writeJSON(w, http.StatusOK, toHookResponse(hk))
}

func (h *HookHandler) delete(w http.ResponseWriter, id string) {
	err := h.store.Hooks().Delete(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Hook not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to delete hook")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
