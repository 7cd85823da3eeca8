package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/1broseidon/wallboard/internal/panels"
)

// SettingsLauncher runs the settings surface as a separate program and
// focuses the running instance instead of starting a second one.
type SettingsLauncher struct {
	launcher panels.Launcher
	ws       panels.WindowSystem
	argv     []string
	class    string

	mu   sync.Mutex
	proc panels.Process
}

// NewSettingsLauncher creates a launcher for argv. class is the WM_CLASS the
// settings window carries.
func NewSettingsLauncher(launcher panels.Launcher, ws panels.WindowSystem, argv []string, class string) *SettingsLauncher {
	return &SettingsLauncher{launcher: launcher, ws: ws, argv: argv, class: class}
}

// Open starts the settings program, or raises it if it is already running.
func (s *SettingsLauncher) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc != nil && !s.proc.Exited() {
		wins, err := s.ws.WindowsByClass(s.class)
		if err != nil {
			return fmt.Errorf("failed to find settings window: %w", err)
		}
		for _, w := range wins {
			if err := s.ws.Restore(w); err != nil {
				return fmt.Errorf("failed to focus settings window: %w", err)
			}
		}
		return nil
	}

	proc, err := s.launcher.Launch(s.argv)
	if err != nil {
		return err
	}
	s.proc = proc
	return nil
}
