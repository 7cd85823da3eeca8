package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/daemon"
	"github.com/1broseidon/wallboard/internal/host"
	"github.com/1broseidon/wallboard/internal/hotkeys"
	"github.com/1broseidon/wallboard/internal/ipc"
	"github.com/1broseidon/wallboard/internal/monitors"
	"github.com/1broseidon/wallboard/internal/panels"
	"github.com/1broseidon/wallboard/internal/platform"
	"github.com/1broseidon/wallboard/internal/runtimepath"
)

const (
	defaultSettingsHotkey = "Control-Shift-w"
	defaultMinimizeHotkey = "Control-Shift-s"
	defaultSettingsCmd    = "xterm -class wallboard-settings -e"
	settingsWindowClass   = "wallboard-settings"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openStore(path string) (*config.Store, error) {
	if path != "" {
		return config.NewStore(path), nil
	}
	return config.NewDefaultStore()
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wallboard/config.yaml)")
	display := fs.String("display", "", "X display (default: $DISPLAY)")
	settingsHotkey := fs.String("settings-hotkey", envOr("WALLBOARD_SETTINGS_HOTKEY", defaultSettingsHotkey), "Shortcut that opens settings")
	minimizeHotkey := fs.String("minimize-hotkey", envOr("WALLBOARD_MINIMIZE_HOTKEY", defaultMinimizeHotkey), "Shortcut that minimizes or restores the panels")
	browser := fs.String("browser", envOr("WALLBOARD_BROWSER", "chromium"), "Browser used for panels")
	settingsCmd := fs.String("settings-cmd", envOr("WALLBOARD_SETTINGS_CMD", defaultSettingsCmd), "Terminal command that hosts the settings form")
	gap := fs.Int("gap", 0, "Gap in pixels between panels")
	interval := fs.Duration("heal-interval", 10*time.Second, "How often crashed panels are revived")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wallboard daemon [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the wallboard host in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	if *debug {
		InitLogger(slog.LevelDebug)
	} else {
		InitLogger(slog.LevelInfo)
	}
	logger := slog.Default()

	store, err := openStore(*path)
	if err != nil {
		logger.Error("failed to resolve config path", "error", err)
		return 1
	}
	created, err := store.Init()
	if err != nil {
		logger.Error("failed to initialize config", "path", store.Path(), "error", err)
		return 1
	}
	if created {
		logger.Info("wrote default config", "path", store.Path())
	}

	backend, err := platform.NewLinuxBackendFromDisplay(*display)
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer backend.Disconnect()

	profileRoot, err := panels.DefaultProfileRoot()
	if err != nil {
		logger.Error("failed to resolve profile directory", "error", err)
		return 1
	}
	manager := panels.NewManager(backend, panels.ExecLauncher{}, panels.Options{
		Browser:     *browser,
		ProfileRoot: profileRoot,
		Logger:      logger.With("component", "panels"),
	})
	defer manager.Close()

	exe, err := os.Executable()
	if err != nil {
		logger.Error("failed to resolve executable", "error", err)
		return 1
	}
	settingsArgv := append(strings.Fields(*settingsCmd), exe, "settings")
	opener := host.NewSettingsLauncher(panels.ExecLauncher{}, backend, settingsArgv, settingsWindowClass)

	h := host.New(store, monitors.NewDirectory(backend), manager, opener, host.Options{
		Gap:    *gap,
		Logger: logger.With("component", "host"),
	})
	if err := h.Reload(); err != nil {
		logger.Error("configuration could not be loaded; panels stay down until it is fixed", "path", store.Path(), "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trigger := hotkeys.NewTrigger(hotkeys.NewX11Binder(backend.XUtil(), backend.RootWindow()), logger.With("component", "hotkeys"))
	bindings := []hotkeys.Binding{
		{Name: "open-settings", Combo: *settingsHotkey, Action: func() { go h.OpenSettings(ctx) }},
		{Name: "toggle-minimize", Combo: *minimizeHotkey, Action: func() { go h.ToggleMinimizeViews(ctx) }},
	}
	if n := trigger.Install(bindings); n < len(bindings) {
		logger.Warn("some hotkeys are unavailable", "registered", n, "wanted", len(bindings))
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		logger.Error("failed to resolve socket path", "error", err)
		return 1
	}
	reloadChan := make(chan struct{}, 1)

	super := daemon.NewSupervisor("wallboard", logger)
	super.Add(ipc.NewServer(h, socketPath, reloadChan, logger.With("component", "ipc")))
	super.Add(daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: *interval,
		Logger:   logger.With("component", "reconciler"),
	}, h))
	super.Add(daemon.NewServiceFunc("startup-apply", func(ctx context.Context) error {
		if err := h.ApplyConfig(ctx); err != nil {
			logger.Warn("initial apply failed", "error", err)
		}
		return suture.ErrDoNotRestart
	}))
	errC := super.ServeBackground(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("reloading", "signal", sig.String())
					if err := h.Reload(); err != nil {
						logger.Error("reload failed", "error", err)
					}
					trigger.Install(bindings)
					continue
				}
				logger.Info("shutting down", "signal", sig.String())
				cancel()
				backend.QuitEventLoop()
				return
			case <-reloadChan:
				trigger.Install(bindings)
			case err := <-errC:
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("supervisor stopped", "error", err)
				}
				cancel()
				backend.QuitEventLoop()
				return
			}
		}
	}()

	logger.Info("wallboard running", "config", store.Path(), "socket", socketPath)
	backend.EventLoop()
	cancel()
	return 0
}
