// Package panels launches the four view windows and keeps them placed on
// their quadrants.
//
// Each view runs in its own browser process in app mode with a dedicated
// user data directory, so profiles isolate cookies and storage. Windows are
// found again by their WM_CLASS, which is derived from the view id.
package panels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/platform"
	"github.com/1broseidon/wallboard/internal/tiling"
)

// WindowSystem is the subset of window operations placement needs.
type WindowSystem interface {
	WindowsByClass(class string) ([]platform.WindowID, error)
	MoveResize(windowID platform.WindowID, bounds platform.Rect) error
	Minimize(windowID platform.WindowID) error
	Restore(windowID platform.WindowID) error
}

// Options tunes a Manager. Zero values fall back to defaults.
type Options struct {
	Browser       string
	ProfileRoot   string
	WindowTimeout time.Duration
	PollInterval  time.Duration
	Logger        *slog.Logger
}

// Placement pairs a view with the rectangle it should occupy.
type Placement struct {
	View   config.ViewConfig
	Bounds platform.Rect
}

type panel struct {
	placement  Placement
	profileDir string
	proc       Process
}

// Manager owns the panel processes.
type Manager struct {
	ws       WindowSystem
	launcher Launcher
	opts     Options
	logger   *slog.Logger

	mu        sync.Mutex
	panels    [tiling.Slots]*panel
	minimized bool
}

// NewManager creates a panel manager.
func NewManager(ws WindowSystem, launcher Launcher, opts Options) *Manager {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	if opts.WindowTimeout <= 0 {
		opts.WindowTimeout = 15 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 200 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{ws: ws, launcher: launcher, opts: opts, logger: logger}
}

// WindowClass returns the WM_CLASS given to the panel window for a view.
func WindowClass(viewID string) string {
	return "wallboard-view-" + viewID
}

// ProfileName returns the storage partition for a view.
func ProfileName(v config.ViewConfig) string {
	return v.ProfileName()
}

// DefaultProfileRoot returns $XDG_DATA_HOME/wallboard/profiles, falling back
// to ~/.local/share.
func DefaultProfileRoot() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "wallboard", "profiles"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "wallboard", "profiles"), nil
}

// Place converges the live panels onto placements. Panels whose url and
// profile are unchanged are only moved; the others are relaunched.
func (m *Manager) Place(ctx context.Context, placements [tiling.Slots]Placement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for slot, pl := range placements {
		if err := m.placeSlot(ctx, slot, pl); err != nil {
			errs = append(errs, fmt.Errorf("view %q: %w", pl.View.ID, err))
		}
	}
	m.minimized = false
	return errors.Join(errs...)
}

// Heal relaunches panels whose process exited since they were placed and
// returns how many were revived.
func (m *Manager) Heal(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	revived := 0
	var errs []error
	for slot, p := range m.panels {
		if p == nil || !p.proc.Exited() {
			continue
		}
		m.logger.Info("panel exited, relaunching", "slot", slot, "view", p.placement.View.ID)
		if err := m.placeSlot(ctx, slot, p.placement); err != nil {
			errs = append(errs, fmt.Errorf("view %q: %w", p.placement.View.ID, err))
			continue
		}
		revived++
	}
	return revived, errors.Join(errs...)
}

// ToggleMinimized minimizes every panel window, or restores them if they
// are currently minimized. It returns the new state.
func (m *Manager) ToggleMinimized() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := !m.minimized
	var errs []error
	for _, p := range m.panels {
		if p == nil {
			continue
		}
		wins, err := m.ws.WindowsByClass(WindowClass(p.placement.View.ID))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, w := range wins {
			if target {
				err = m.ws.Minimize(w)
			} else {
				err = m.ws.Restore(w)
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("window %d: %w", w, err))
			}
		}
	}
	m.minimized = target
	return target, errors.Join(errs...)
}

// Close stops every panel process.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for slot, p := range m.panels {
		if p != nil {
			m.stop(slot, p)
			m.panels[slot] = nil
		}
	}
}

func (m *Manager) placeSlot(ctx context.Context, slot int, pl Placement) error {
	dir := filepath.Join(m.opts.ProfileRoot, ProfileName(pl.View))

	// Windows of a replaced panel can outlive its process for a moment and
	// carry the same class as the new one.
	var stale map[platform.WindowID]bool
	cur := m.panels[slot]
	if cur != nil && (cur.placement.View.ID != pl.View.ID ||
		cur.placement.View.URL != pl.View.URL ||
		cur.profileDir != dir ||
		cur.proc.Exited()) {
		stale = m.windowSet(WindowClass(pl.View.ID))
		m.stop(slot, cur)
		m.panels[slot] = nil
		cur = nil
	}

	if cur == nil {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create profile dir: %w", err)
		}
		proc, err := m.launcher.Launch(m.browserArgs(pl.View, dir))
		if err != nil {
			return err
		}
		cur = &panel{profileDir: dir, proc: proc}
		m.panels[slot] = cur
		m.logger.Debug("panel launched", "slot", slot, "view", pl.View.ID, "url", pl.View.URL, "profile", dir)
	}
	cur.placement = pl

	wins, err := m.waitForWindows(ctx, WindowClass(pl.View.ID), stale)
	if err != nil {
		return err
	}
	for _, w := range wins {
		if m.minimized {
			if err := m.ws.Restore(w); err != nil {
				m.logger.Warn("failed to restore panel", "view", pl.View.ID, "window", w, "error", err)
			}
		}
		if err := m.ws.MoveResize(w, pl.Bounds); err != nil {
			return fmt.Errorf("failed to place window %d: %w", w, err)
		}
	}
	return nil
}

func (m *Manager) browserArgs(v config.ViewConfig, profileDir string) []string {
	return []string{
		m.opts.Browser,
		"--app=" + v.URL,
		"--user-data-dir=" + profileDir,
		"--class=" + WindowClass(v.ID),
		"--no-first-run",
		"--no-default-browser-check",
	}
}

func (m *Manager) windowSet(class string) map[platform.WindowID]bool {
	wins, err := m.ws.WindowsByClass(class)
	if err != nil || len(wins) == 0 {
		return nil
	}
	set := make(map[platform.WindowID]bool, len(wins))
	for _, w := range wins {
		set[w] = true
	}
	return set
}

// waitForWindows polls until a window of class that is not in exclude shows up.
func (m *Manager) waitForWindows(ctx context.Context, class string, exclude map[platform.WindowID]bool) ([]platform.WindowID, error) {
	deadline := time.NewTimer(m.opts.WindowTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		all, err := m.ws.WindowsByClass(class)
		if err != nil {
			return nil, err
		}
		var wins []platform.WindowID
		for _, w := range all {
			if !exclude[w] {
				wins = append(wins, w)
			}
		}
		if len(wins) > 0 {
			return wins, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("no window with class %q appeared within %s", class, m.opts.WindowTimeout)
		case <-ticker.C:
		}
	}
}

func (m *Manager) stop(slot int, p *panel) {
	if err := p.proc.Stop(); err != nil {
		m.logger.Warn("failed to stop panel", "slot", slot, "view", p.placement.View.ID, "error", err)
	}
}
