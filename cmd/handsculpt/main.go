package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handsculpt/internal/app"
	"github.com/ayusman/handsculpt/internal/config"
	"github.com/ayusman/handsculpt/internal/server"
	"github.com/ayusman/handsculpt/internal/store"
	"github.com/ayusman/handsculpt/internal/tray"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		flags      = config.Flags{CameraID: -1}
	)

	cmd := &cobra.Command{
		Use:          "handsculpt",
		Short:        "Sculpt 3D primitives with hand gestures",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, flags)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ~/.handsculpt/config.yaml)")
	cmd.Flags().StringVar(&flags.Addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&flags.DataDir, "data-dir", "", "data directory (default ~/.handsculpt)")
	cmd.Flags().IntVar(&flags.CameraID, "camera", -1, "camera device index")
	cmd.Flags().BoolVar(&flags.Headless, "headless", false, "run without the system tray")

	return cmd
}

func run(configPath string, flags config.Flags) error {
	fmt.Println("Handsculpt - gesture sculpting studio")

	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Resolve(flags); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	a := app.New(app.Config{Settings: cfg, Store: st})
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := a.PluginManager().Watch(watchCtx); err != nil {
			log.Printf("Plugin watcher stopped: %v", err)
		}
	}()

	if cfg.StaticDir == "" {
		cfg.StaticDir = findWebDir(cfg.DataDir)
	}
	if cfg.StaticDir != "" {
		fmt.Printf("Serving static files from: %s\n", cfg.StaticDir)
	}

	srv := server.New(server.Config{
		StaticDir: cfg.StaticDir,
		Store:     st,
		App:       a,
		Camera:    a.Camera(),
		Plugins:   a.PluginManager(),
	})

	if err := a.Start(); err != nil {
		log.Printf("Camera unavailable (%v), accepting browser frames only", err)
	}
	a.SetEnabled(true)
	defer a.Stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
	}()

	if cfg.Headless {
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-sigCh:
			return nil
		}
	}

	t := tray.New(tray.Callbacks{
		Toggle: a.SetEnabled,
		Open:   func() { openBrowser(studioURL(cfg.Addr)) },
		Export: func() {
			if _, err := a.Export(); err != nil {
				log.Printf("Export failed: %v", err)
			}
		},
	})

	events, unsubscribe := a.Subscribe()
	defer unsubscribe()
	go func() {
		for ev := range events {
			if ev.Effects == nil {
				continue
			}
			status := a.Status()
			t.SetStatus(tray.Status{Kind: string(status.Kind), Color: status.Color, Placed: status.Placed})
		}
	}()

	go func() {
		select {
		case err := <-errCh:
			if err != nil {
				log.Printf("Server failed: %v", err)
			}
		case <-sigCh:
		}
		t.Quit()
	}()

	// systray owns the main thread until Quit.
	t.Run()
	return nil
}

func studioURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
