package hotkeys

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// fakeBinder behaves like an OS table that refuses duplicate registrations.
type fakeBinder struct {
	bound       map[string]func()
	taken       map[string]bool
	unregisters int
}

func newFakeBinder() *fakeBinder {
	return &fakeBinder{bound: make(map[string]func()), taken: make(map[string]bool)}
}

func (f *fakeBinder) IsRegistered(combo string) bool {
	_, ok := f.bound[combo]
	return ok
}

func (f *fakeBinder) Register(combo string, cb func()) error {
	if f.taken[combo] {
		return errors.New("combination owned by another client")
	}
	if _, ok := f.bound[combo]; ok {
		return errors.New("shortcut already registered")
	}
	f.bound[combo] = cb
	return nil
}

func (f *fakeBinder) Unregister(combo string) error {
	f.unregisters++
	delete(f.bound, combo)
	return nil
}

func (f *fakeBinder) press(combo string) {
	if cb, ok := f.bound[combo]; ok {
		cb()
	}
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestInstall_TwiceDoesNotFail(t *testing.T) {
	binder := newFakeBinder()
	var buf bytes.Buffer
	trigger := NewTrigger(binder, testLogger(&buf))

	opened := 0
	bindings := []Binding{{Name: "settings", Combo: "Control-Shift-w", Action: func() { opened++ }}}

	if n := trigger.Install(bindings); n != 1 {
		t.Fatalf("first install = %d, want 1", n)
	}
	if n := trigger.Install(bindings); n != 1 {
		t.Fatalf("second install = %d, want 1; log: %s", n, buf.String())
	}
	if binder.unregisters != 1 {
		t.Fatalf("expected the existing binding to be released once, got %d", binder.unregisters)
	}
	if strings.Contains(buf.String(), "already registered") {
		t.Fatalf("unexpected duplicate registration failure: %s", buf.String())
	}

	binder.press("Control-Shift-w")
	if opened != 1 {
		t.Fatalf("expected a single action per press, got %d", opened)
	}
}

func TestInstall_FailureIsLoggedAndOthersContinue(t *testing.T) {
	binder := newFakeBinder()
	binder.taken["Control-Shift-w"] = true
	var buf bytes.Buffer
	trigger := NewTrigger(binder, testLogger(&buf))

	minimized := false
	n := trigger.Install([]Binding{
		{Name: "settings", Combo: "Control-Shift-w", Action: func() {}},
		{Name: "minimize", Combo: "Control-Shift-s", Action: func() { minimized = true }},
	})
	if n != 1 {
		t.Fatalf("Install = %d, want 1", n)
	}
	if !strings.Contains(buf.String(), "hotkey not registered") || !strings.Contains(buf.String(), "another client") {
		t.Fatalf("expected failure to be logged, got: %s", buf.String())
	}

	binder.press("Control-Shift-s")
	if !minimized {
		t.Fatalf("expected the second binding to work")
	}
}

type panicBinder struct{ fakeBinder }

func (p *panicBinder) Register(string, func()) error { panic("bad keysym") }

func TestInstall_RecoversFromBinderPanic(t *testing.T) {
	var buf bytes.Buffer
	trigger := NewTrigger(&panicBinder{fakeBinder: *newFakeBinder()}, testLogger(&buf))

	if n := trigger.Install([]Binding{{Name: "settings", Combo: "Control-Shift-w", Action: func() {}}}); n != 0 {
		t.Fatalf("Install = %d, want 0", n)
	}
	if !strings.Contains(buf.String(), "panic") {
		t.Fatalf("expected panic to be logged, got: %s", buf.String())
	}
}

func TestInstall_RejectsEmptyCombo(t *testing.T) {
	binder := newFakeBinder()
	var buf bytes.Buffer
	if n := NewTrigger(binder, testLogger(&buf)).Install([]Binding{{Name: "settings", Combo: " ", Action: func() {}}}); n != 0 {
		t.Fatalf("Install = %d, want 0", n)
	}
	if len(binder.bound) != 0 {
		t.Fatalf("nothing should be bound")
	}
}

func TestRegistrationError_Unwraps(t *testing.T) {
	cause := errors.New("grab failed")
	err := &RegistrationError{Name: "minimize", Combo: "Control-Shift-s", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "Control-Shift-s") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
