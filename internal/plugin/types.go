// Package plugin discovers and runs external hook plugins. A plugin is an
// executable that receives one JSON Request on stdin and answers with one
// JSON Response on stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// ShapeInfo describes the sculpted shape an event refers to.
type ShapeInfo struct {
	Kind   string `json:"kind"`
	Color  string `json:"color"`
	Solids int    `json:"solids"`
}

// ExportInfo describes an exported image.
type ExportInfo struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action string          `json:"action"`
	Event  string          `json:"event"`
	Shape  *ShapeInfo      `json:"shape,omitempty"`
	Export *ExportInfo     `json:"export,omitempty"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the plugin declares action.
func (p *Plugin) Supports(action string) bool {
	for _, a := range p.Manifest.Actions {
		if a == action {
			return true
		}
	}
	return false
}
