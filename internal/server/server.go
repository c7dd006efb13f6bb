// Package server provides the HTTP server for the handsculpt studio.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/handsculpt/internal/app"
	"github.com/ayusman/handsculpt/internal/capture"
	"github.com/ayusman/handsculpt/internal/plugin"
	"github.com/ayusman/handsculpt/internal/server/api"
	"github.com/ayusman/handsculpt/internal/store"
)

// Config selects which parts of the API are mounted. Routes whose
// dependency is nil are left out.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Camera    capture.Camera
	Plugins   *plugin.Manager
}

// Server routes studio requests. It is an http.Handler and can also own
// its listener through ListenAndServe and Shutdown.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	mu   sync.Mutex
	http *http.Server
}

// New builds a Server and mounts its routes.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", getOnly(s.handleHealth))

	if a := s.config.App; a != nil {
		session := api.NewSessionHandler(a)
		s.mount(session, "/api/session", "/api/session/")
		s.mount(api.NewPaletteHandler(a), "/api/palette.png")
		s.mount(api.NewSettingsHandler(a), "/api/settings")
		s.mount(NewTrackingHandler(a), "/api/tracking")
		s.mount(NewFramesHandler(a), "/api/frames")
		s.mount(NewLandmarksHandler(a), "/api/landmarks")
	}

	if st := s.config.Store; st != nil {
		s.mount(api.NewExportHandler(st), "/api/exports", "/api/exports/")
		s.mount(api.NewHookHandler(st, s.config.Plugins), "/api/hooks", "/api/hooks/")
	}

	if s.config.Plugins != nil {
		s.mux.HandleFunc("/api/plugins", getOnly(s.handlePlugins))
	}
	if s.config.Camera != nil {
		s.mount(NewStreamHandler(s.config.Camera), "/api/stream")
	}
	if s.config.StaticDir != "" {
		s.mount(http.FileServer(http.Dir(s.config.StaticDir)), "/")
	}
}

func (s *Server) mount(h http.Handler, patterns ...string) {
	for _, p := range patterns {
		s.mux.Handle(p, h)
	}
}

// getOnly rejects every method but GET.
func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Tracking *bool  `json:"tracking,omitempty"`
	Running  *bool  `json:"running,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	}
	if a := s.config.App; a != nil {
		tracking, running := a.IsEnabled(), a.Running()
		resp.Tracking, resp.Running = &tracking, &running
	}
	writeJSON(w, resp)
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	plugins := s.config.Plugins.List()
	resp := listPluginsResponse{Plugins: make([]pluginResponse, 0, len(plugins))}
	for _, p := range plugins {
		resp.Plugins = append(resp.Plugins, pluginResponse{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Actions:     p.Manifest.Actions,
		})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe serves on addr until Shutdown. A clean shutdown returns
// nil.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active requests
// until ctx expires. Hijacked websocket connections are not waited for.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
