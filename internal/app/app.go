// Package app wires the camera pipeline, the sculpting session, export and
// plugin hooks together. Every session mutation goes through App so that
// frames and button actions are applied one at a time.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/handsculpt/internal/capture"
	"github.com/ayusman/handsculpt/internal/config"
	"github.com/ayusman/handsculpt/internal/detector"
	"github.com/ayusman/handsculpt/internal/plugin"
	"github.com/ayusman/handsculpt/internal/render"
	"github.com/ayusman/handsculpt/internal/scene"
	"github.com/ayusman/handsculpt/internal/sculpt"
	"github.com/ayusman/handsculpt/internal/store"
)

// Capture rates. The camera idles at IdleFPS and jumps to ActiveFPS as soon
// as the motion detector fires, falling back after StillnessTimeout.
const (
	IdleFPS          = 5
	ActiveFPS        = 15
	StillnessTimeout = 2 * time.Second
)

// PluginTimeoutMs bounds one hook plugin call.
const PluginTimeoutMs = 5000

// Config is what main hands to New.
type Config struct {
	Settings config.Config
	Store    *store.Store

	// Camera overrides the capture device selected by Settings.CameraID.
	Camera capture.Camera
	// Detector overrides MediaPipe detection.
	Detector detector.Detector
}

// App owns the capture pipeline and the one sculpting session.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	scene      *scene.Scene
	renderer   *render.Renderer
	format     render.Format
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	hub        *hub
	hooks      sync.WaitGroup

	// sessionMu serialises Step and every action on session.
	sessionMu sync.Mutex
	session   *sculpt.Session

	enabled atomic.Bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New builds an App. Calibration values saved in the store win over the
// file settings. Without an explicit detector MediaPipe is tried and the mock
// detector stands in when the helper cannot start.
func New(config Config) *App {
	settings := config.Settings
	if config.Store != nil {
		applyCalibration(&settings, config.Store.Settings())
	}
	if settings.MotionThreshold <= 0 {
		settings.MotionThreshold = 1.0 // Default threshold: 1% pixel change
	}
	config.Settings = settings

	format, err := render.ParseFormat(settings.Export.Format)
	if err != nil {
		log.Printf("Unknown export format %q, using png", settings.Export.Format)
		format = render.FormatPNG
	}

	sc := scene.New(scene.DefaultCamera(settings.Viewport))
	opts := render.DefaultOptions(settings.Viewport)
	if settings.Export.Supersample > 0 {
		opts.Supersample = settings.Export.Supersample
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		motion:     capture.NewMotionDetector(settings.MotionThreshold),
		detector:   config.Detector,
		scene:      sc,
		renderer:   render.NewRenderer(opts),
		format:     format,
		pluginMgr:  plugin.NewManager(settings.PluginDir),
		pluginExec: plugin.NewExecutor(PluginTimeoutMs),
		hub:        newHub(),
		session:    sculpt.New(sessionConfig(settings), sc),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DefaultDevice(settings.CameraID))
	}

	if a.detector == nil {
		a.detector = defaultDetector()
	}
	return a
}

func defaultDetector() detector.Detector {
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Printf("Hand tracking falls back to the mock detector: %v", err)
		return detector.NewMockDetector()
	}
	log.Println("Hand tracking uses MediaPipe")
	return mp
}

func sessionConfig(s config.Config) sculpt.Config {
	cfg := sculpt.DefaultConfig(s.Viewport)
	cfg.PinchThreshold = s.Gesture.PinchThreshold
	cfg.HoverRadius = s.Gesture.HoverRadius
	cfg.DwellDuration = s.Dwell()
	cfg.HistoryLimit = s.HistoryLimit
	cfg.OrbitSensitivity = s.OrbitSensitivity
	return cfg
}

// applyCalibration overrides tuning values with those saved in the store.
func applyCalibration(s *config.Config, repo *store.SettingsRepository) {
	load := func(key string, set func(float64)) {
		v, err := repo.GetFloat(key)
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		if err != nil {
			log.Printf("Ignoring setting %s: %v", key, err)
			return
		}
		if v > 0 {
			set(v)
		}
	}
	load(store.SettingPinchThreshold, func(v float64) { s.Gesture.PinchThreshold = v })
	load(store.SettingHoverRadius, func(v float64) { s.Gesture.HoverRadius = v })
	load(store.SettingDwellMillis, func(v float64) { s.DwellMillis = int(v) })
	load(store.SettingOrbitSensitivity, func(v float64) { s.OrbitSensitivity = v })
}

// SetEnabled pauses or resumes hand tracking. While paused the pipeline
// keeps the camera open but drops every frame.
func (a *App) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

// IsEnabled reports whether hand tracking is on.
func (a *App) IsEnabled() bool {
	return a.enabled.Load()
}

// SetDetector swaps the detector used by the next frame.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// DiscoverPlugins rescans the plugin directory.
func (a *App) DiscoverPlugins() error {
	err := a.pluginMgr.Discover()
	if err == nil {
		log.Printf("Loaded %d plugins from %s", len(a.pluginMgr.List()), a.pluginMgr.PluginDir())
	}
	return err
}

// Start opens the camera and launches the capture goroutine. Calling it on a
// running App does nothing.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(IdleFPS)

	stop, done := make(chan struct{}), make(chan struct{})
	a.stopCh, a.doneCh = stop, done
	go a.runPipeline(stop, done)

	log.Printf("Capture started on camera %d", a.config.Settings.CameraID)
	return nil
}

// Stop ends the capture goroutine, then releases the camera, the motion
// baseline and the detector. It blocks until in-flight hooks return.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	closeLogged := func(what string, fn func() error) {
		if err := fn(); err != nil {
			log.Printf("Closing %s: %v", what, err)
		}
	}
	closeLogged("camera", a.camera.Close)
	a.motion.Close()
	if d := a.Detector(); d != nil {
		closeLogged("detector", d.Close)
	}

	a.WaitHooks()
	log.Println("Capture stopped")
}

// Running reports whether the pipeline goroutine is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

func (a *App) Camera() capture.Camera { return a.camera }

// Scene returns the shared scene.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Settings returns the effective configuration.
func (a *App) Settings() config.Config {
	return a.config.Settings
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

func (a *App) PluginManager() *plugin.Manager { return a.pluginMgr }

// Detector returns the detector currently in use.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Subscribe registers for per-frame events. The returned function
// unsubscribes and closes the channel.
func (a *App) Subscribe() (<-chan Event, func()) {
	return a.hub.subscribe()
}
