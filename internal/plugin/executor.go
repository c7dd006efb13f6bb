package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

var (
	// ErrUnsupportedAction is returned when a plugin does not declare the
	// requested action.
	ErrUnsupportedAction = errors.New("action not supported by plugin")
	// ErrTimeout is returned when a plugin outlives the executor timeout.
	ErrTimeout = errors.New("plugin timed out")
)

// Executor runs one plugin process per request, bounded by a fixed timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor whose calls are cut off after timeoutMs.
func NewExecutor(timeoutMs int) *Executor {
	return &Executor{timeout: time.Duration(timeoutMs) * time.Millisecond}
}

// Timeout returns the per-call timeout.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute writes req as JSON to the plugin's stdin and decodes its stdout
// as a Response. A non-zero exit is an error even if the plugin printed a
// response; stderr is folded into the error text.
func (e *Executor) Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error) {
	if !plugin.Supports(req.Action) {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupportedAction, plugin.Manifest.Name, req.Action)
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, plugin.Executable)
	cmd.Dir = plugin.Path
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w after %s: %s", ErrTimeout, e.timeout, plugin.Manifest.Name)
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, fmt.Errorf("plugin %s canceled: %w", plugin.Manifest.Name, ctx.Err())
	case runErr != nil && stderr.Len() > 0:
		return nil, fmt.Errorf("plugin %s failed: %w: %s", plugin.Manifest.Name, runErr, bytes.TrimSpace(stderr.Bytes()))
	case runErr != nil:
		return nil, fmt.Errorf("plugin %s failed: %w", plugin.Manifest.Name, runErr)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w (stdout %q)", plugin.Manifest.Name, err, stdout.String())
	}
	return &resp, nil
}
