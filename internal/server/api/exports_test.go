package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handsculpt/internal/store"
)

func seedExports(t *testing.T, s *store.Store) string {
	t.Helper()

	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"exp-1", "exp-2", "exp-3"} {
		path := filepath.Join(dir, id+".png")
		if err := os.WriteFile(path, []byte("png-bytes-"+id), 0644); err != nil {
			t.Fatalf("failed to write export file: %v", err)
		}
		err := s.Exports().Create(&store.Export{
			ID:        id,
			Kind:      "cube",
			Format:    "png",
			Path:      path,
			Width:     64,
			Height:    36,
			Solids:    1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("failed to create export: %v", err)
		}
	}
	return dir
}

func TestExportHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedExports(t, s)
	handler := NewExportHandler(s)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all newest first", "", []string{"exp-3", "exp-2", "exp-1"}},
		{"limited", "?limit=2", []string{"exp-3", "exp-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(handler, http.MethodGet, "/api/exports"+tt.query)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			var resp listExportsResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if len(resp.Exports) != len(tt.want) {
				t.Fatalf("expected %d exports, got %d", len(tt.want), len(resp.Exports))
			}
			for i, id := range tt.want {
				if resp.Exports[i].ID != id {
					t.Errorf("export %d: expected %s, got %s", i, id, resp.Exports[i].ID)
				}
			}
		})
	}

	t.Run("bad limit", func(t *testing.T) {
		rec := do(handler, http.MethodGet, "/api/exports?limit=abc")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestExportHandler_GetImageDelete(t *testing.T) {
	s := newTestStore(t)
	seedExports(t, s)
	handler := NewExportHandler(s)

	rec := do(handler, http.MethodGet, "/api/exports/exp-2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got exportResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if got.Kind != "cube" || got.Width != 64 {
		t.Errorf("unexpected export: %+v", got)
	}
	if got.CreatedAt != "2026-03-01T12:01:00Z" {
		t.Errorf("unexpected created_at %s", got.CreatedAt)
	}

	rec = do(handler, http.MethodGet, "/api/exports/exp-2/image")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected image status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != "png-bytes-exp-2" {
		t.Errorf("unexpected image body %q", rec.Body.String())
	}

	rec = do(handler, http.MethodDelete, "/api/exports/exp-2")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	for _, path := range []string{"/api/exports/exp-2", "/api/exports/exp-2/image", "/api/exports/exp-2/thumb"} {
		rec = do(handler, http.MethodGet, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}
