package hotkeys

import (
	"fmt"
	"log/slog"
	"strings"
)

// Binder is the process-wide key binding table.
type Binder interface {
	IsRegistered(combo string) bool
	Register(combo string, callback func()) error
	Unregister(combo string) error
}

// Binding ties a key combination to a host action.
type Binding struct {
	Name   string
	Combo  string
	Action func()
}

// RegistrationError reports a binding that could not be established.
type RegistrationError struct {
	Name  string
	Combo string
	Err   error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s hotkey %q: %v", e.Name, e.Combo, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// Trigger installs global shortcuts.
type Trigger struct {
	binder Binder
	logger *slog.Logger
}

// NewTrigger creates a trigger over binder.
func NewTrigger(binder Binder, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{binder: binder, logger: logger}
}

// Install establishes every binding. A combination that is already bound is
// unbound first, so repeated installs in one process are safe. Failures are
// logged and skipped; the number of active bindings is returned.
func (t *Trigger) Install(bindings []Binding) int {
	installed := 0
	for _, b := range bindings {
		if err := t.install(b); err != nil {
			t.logger.Warn("hotkey not registered", "name", b.Name, "combo", b.Combo, "error", err)
			continue
		}
		t.logger.Info("hotkey registered", "name", b.Name, "combo", b.Combo)
		installed++
	}
	return installed
}

func (t *Trigger) install(b Binding) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RegistrationError{Name: b.Name, Combo: b.Combo, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	combo := strings.TrimSpace(b.Combo)
	if combo == "" {
		return &RegistrationError{Name: b.Name, Combo: b.Combo, Err: fmt.Errorf("empty key combination")}
	}
	if b.Action == nil {
		return &RegistrationError{Name: b.Name, Combo: combo, Err: fmt.Errorf("no action")}
	}

	if t.binder.IsRegistered(combo) {
		if err := t.binder.Unregister(combo); err != nil {
			return &RegistrationError{Name: b.Name, Combo: combo, Err: fmt.Errorf("unregister previous binding: %w", err)}
		}
	}
	if err := t.binder.Register(combo, b.Action); err != nil {
		return &RegistrationError{Name: b.Name, Combo: combo, Err: err}
	}
	return nil
}
