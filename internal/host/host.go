// Package host implements the wallboard command contract: it owns the
// last-saved document and converges the live panels onto it.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/monitors"
	"github.com/1broseidon/wallboard/internal/panels"
	"github.com/1broseidon/wallboard/internal/tiling"
)

// Store persists the document.
type Store interface {
	Load() (config.AppConfig, error)
	Save(cfg config.AppConfig) error
}

// MonitorSource snapshots the connected displays.
type MonitorSource interface {
	Snapshot(ctx context.Context) ([]monitors.Info, error)
}

// Placer drives the panel windows.
type Placer interface {
	Place(ctx context.Context, placements [tiling.Slots]panels.Placement) error
	Heal(ctx context.Context) (int, error)
	ToggleMinimized() (bool, error)
}

// SettingsOpener shows the settings surface.
type SettingsOpener interface {
	Open(ctx context.Context) error
}

// Options configures a Host.
type Options struct {
	Gap    int
	Logger *slog.Logger
}

// Host serves the command contract.
type Host struct {
	store    Store
	monitors MonitorSource
	placer   Placer
	settings SettingsOpener
	gap      int
	logger   *slog.Logger

	mu      sync.Mutex
	cfg     config.AppConfig
	loadErr error
	applied bool
}

// New creates a host. Call Reload before serving commands.
func New(store Store, source MonitorSource, placer Placer, settings SettingsOpener, opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		store:    store,
		monitors: source,
		placer:   placer,
		settings: settings,
		gap:      opts.Gap,
		logger:   logger,
		loadErr:  fmt.Errorf("configuration not loaded"),
	}
}

// Reload reads the document from the store. On failure the host keeps
// reporting the LoadError instead of falling back to a default.
func (h *Host) Reload() error {
	cfg, err := h.store.Load()

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.loadErr = err
		return err
	}
	h.cfg = cfg
	h.loadErr = nil
	return nil
}

// GetConfig returns the last loaded or saved document.
func (h *Host) GetConfig(ctx context.Context) (config.AppConfig, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loadErr != nil {
		return config.AppConfig{}, h.loadErr
	}
	return h.cfg.Clone(), nil
}

// ListMonitors returns a fresh display snapshot.
func (h *Host) ListMonitors(ctx context.Context) ([]monitors.Info, error) {
	return h.monitors.Snapshot(ctx)
}

// SaveConfig validates and persists cfg. The in-memory document only
// changes when the write succeeds.
func (h *Host) SaveConfig(ctx context.Context, cfg config.AppConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.store.Save(cfg); err != nil {
		h.logger.Warn("save rejected", "error", err)
		return err
	}
	h.cfg = cfg.Clone()
	h.loadErr = nil
	h.logger.Info("configuration saved")
	return nil
}

// ApplyConfig places the panels according to the last-saved document.
func (h *Host) ApplyConfig(ctx context.Context) error {
	h.mu.Lock()
	cfg, loadErr := h.cfg.Clone(), h.loadErr
	h.mu.Unlock()

	if loadErr != nil {
		return &ApplyError{Err: loadErr}
	}

	list, err := h.monitors.Snapshot(ctx)
	if err != nil {
		return &ApplyError{Err: err}
	}
	target, err := monitors.Select(list, cfg.Monitor)
	if err != nil {
		return &ApplyError{Err: err}
	}

	rects := tiling.Quadrants(target.Bounds(), h.gap)
	var placements [tiling.Slots]panels.Placement
	for i, v := range cfg.Views {
		placements[i] = panels.Placement{View: v, Bounds: rects[i]}
	}

	if err := h.placer.Place(ctx, placements); err != nil {
		return &ApplyError{Err: err}
	}

	h.mu.Lock()
	h.applied = true
	h.mu.Unlock()

	h.logger.Info("configuration applied", "monitor", target.Name, "index", target.Index)
	return nil
}

// OpenSettings shows the settings surface. Failures are logged.
func (h *Host) OpenSettings(ctx context.Context) error {
	if h.settings == nil {
		return fmt.Errorf("no settings surface configured")
	}
	if err := h.settings.Open(ctx); err != nil {
		h.logger.Warn("failed to open settings", "error", err)
		return err
	}
	return nil
}

// ToggleMinimizeViews minimizes or restores every panel. Failures are logged.
func (h *Host) ToggleMinimizeViews(ctx context.Context) error {
	minimized, err := h.placer.ToggleMinimized()
	if err != nil {
		h.logger.Warn("failed to toggle panel minimization", "error", err)
		return err
	}
	h.logger.Debug("panels toggled", "minimized", minimized)
	return nil
}

// Heal relaunches panels that exited. It does nothing before the first
// successful apply.
func (h *Host) Heal(ctx context.Context) error {
	h.mu.Lock()
	applied := h.applied
	h.mu.Unlock()
	if !applied {
		return nil
	}

	n, err := h.placer.Heal(ctx)
	if n > 0 {
		h.logger.Info("panels revived", "count", n)
	}
	return err
}
