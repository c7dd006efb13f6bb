// Package config loads handsculpt settings from a YAML file and merges CLI
// overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/handsculpt/internal/gesture"
	"github.com/ayusman/handsculpt/internal/render"
)

// DirName is the per-user data directory under the home directory.
const DirName = ".handsculpt"

// Config holds all configurable paths and tuning values.
type Config struct {
	Addr            string  `yaml:"addr"`
	DataDir         string  `yaml:"data_dir"`
	PluginDir       string  `yaml:"plugin_dir"`
	StaticDir       string  `yaml:"static_dir"`
	CameraID        int     `yaml:"camera_id"`
	MotionThreshold float64 `yaml:"motion_threshold"`
	Headless        bool    `yaml:"headless"`

	Viewport gesture.Viewport `yaml:"viewport"`
	Gesture  Gesture          `yaml:"gesture"`

	DwellMillis      int     `yaml:"dwell_ms"`
	HistoryLimit     int     `yaml:"history_limit"`
	OrbitSensitivity float64 `yaml:"orbit_sensitivity"`

	Export Export `yaml:"export"`
}

// Gesture holds hand classification thresholds.
type Gesture struct {
	PinchThreshold float64 `yaml:"pinch_threshold"`
	HoverRadius    float64 `yaml:"hover_radius_px"`
}

// Export holds image export settings.
type Export struct {
	Dir         string `yaml:"dir"`
	Format      string `yaml:"format"`
	Supersample int    `yaml:"supersample"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Addr     string
	DataDir  string
	CameraID int // negative means unset
	Headless bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:            ":8080",
		MotionThreshold: 1.0,
		Viewport:        gesture.DefaultViewport,
		Gesture: Gesture{
			PinchThreshold: gesture.DefaultPinchThreshold,
			HoverRadius:    40,
		},
		DwellMillis:      3000,
		HistoryLimit:     50,
		OrbitSensitivity: 0.005,
		Export: Export{
			Format:      string(render.FormatPNG),
			Supersample: 2,
		},
	}
}

// DefaultPath returns ~/.handsculpt/config.yaml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

// Load reads a YAML config file over Default. A missing file yields the
// defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve applies CLI overrides, fills empty fields with defaults and
// resolves directories relative to the data directory. A leading ~ in any
// configured directory expands to the home directory.
func (c *Config) Resolve(flags Flags) error {
	if flags.Addr != "" {
		c.Addr = flags.Addr
	}
	if flags.DataDir != "" {
		c.DataDir = flags.DataDir
	}
	if flags.CameraID >= 0 {
		c.CameraID = flags.CameraID
	}
	if flags.Headless {
		c.Headless = true
	}

	if c.DataDir == "" {
		c.DataDir = filepath.Join("~", DirName)
	}
	// Paths in the file may start with ~.
	for _, p := range []*string{&c.DataDir, &c.PluginDir, &c.StaticDir, &c.Export.Dir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("config: expand %q: %w", *p, err)
		}
		*p = expanded
	}
	c.PluginDir = underDataDir(c.DataDir, c.PluginDir, "plugins")
	c.Export.Dir = underDataDir(c.DataDir, c.Export.Dir, "exports")

	def := Default()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.MotionThreshold <= 0 {
		c.MotionThreshold = def.MotionThreshold
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		c.Viewport = def.Viewport
	}
	if c.Gesture.PinchThreshold <= 0 {
		c.Gesture.PinchThreshold = def.Gesture.PinchThreshold
	}
	if c.Gesture.HoverRadius <= 0 {
		c.Gesture.HoverRadius = def.Gesture.HoverRadius
	}
	if c.DwellMillis <= 0 {
		c.DwellMillis = def.DwellMillis
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.OrbitSensitivity <= 0 {
		c.OrbitSensitivity = def.OrbitSensitivity
	}
	if c.Export.Supersample <= 0 {
		c.Export.Supersample = def.Export.Supersample
	}

	format, err := render.ParseFormat(c.Export.Format)
	if err != nil {
		return fmt.Errorf("config: export format: %w", err)
	}
	c.Export.Format = string(format)

	return nil
}

// DBPath returns the SQLite database path inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "handsculpt.db")
}

// Dwell returns the bin dwell duration.
func (c Config) Dwell() time.Duration {
	return time.Duration(c.DwellMillis) * time.Millisecond
}

func underDataDir(dataDir, dir, fallback string) string {
	if dir == "" {
		return filepath.Join(dataDir, fallback)
	}
	if !filepath.IsAbs(dir) {
		return filepath.Join(dataDir, dir)
	}
	return dir
}
