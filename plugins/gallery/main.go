// Package main provides a gallery plugin that files exported images into a
// gallery directory and can reveal that directory in the desktop file
// manager.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Export *ExportInfo     `json:"export,omitempty"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// ExportInfo is the exported image the event refers to.
type ExportInfo struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Format string `json:"format"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config selects the gallery directory. Dir defaults to
// ~/Pictures/handsculpt.
type Config struct {
	Dir string `json:"dir"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	dir, err := galleryDir(req.Config)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	switch req.Action {
	case "copy", "export":
		if req.Export == nil || req.Export.Path == "" {
			writeErrorResponse("export path is required")
			return
		}
		dst, err := copyInto(dir, req.Export.Path)
		if err != nil {
			writeErrorResponse(fmt.Sprintf("action copy failed: %v", err))
			return
		}
		writeSuccessResponse(map[string]string{"path": dst})
	case "reveal":
		if err := reveal(dir); err != nil {
			writeErrorResponse(fmt.Sprintf("action reveal failed: %v", err))
			return
		}
		writeSuccessResponse(map[string]string{"dir": dir})
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}
}

func galleryDir(raw json.RawMessage) (string, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Pictures", "handsculpt"), nil
}

// copyInto copies src into dir under its own base name.
func copyInto(dir, src string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	dst := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", err
	}
	return dst, out.Close()
}

// reveal opens dir in the platform file manager.
func reveal(dir string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dir)
	case "windows":
		cmd = exec.Command("explorer", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response with data to stdout.
func writeSuccessResponse(data any) {
	resp := Response{Success: true}
	if raw, err := json.Marshal(data); err == nil {
		resp.Data = raw
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
