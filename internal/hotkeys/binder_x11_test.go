package hotkeys

import (
	"bytes"
	"errors"
	"testing"
)

// fakeGrabber keeps handlers the way xgbutil does: Connect appends and
// nothing ever removes one. A press reaches every handler of a grabbed key.
type fakeGrabber struct {
	handlers map[string][]func()
	grabbed  map[string]bool
	failGrab bool
}

func newFakeGrabber() *fakeGrabber {
	return &fakeGrabber{handlers: make(map[string][]func()), grabbed: make(map[string]bool)}
}

func (g *fakeGrabber) Connect(combo string, handler func()) error {
	g.handlers[combo] = append(g.handlers[combo], handler)
	g.grabbed[combo] = true
	return nil
}

func (g *fakeGrabber) Grab(combo string) error {
	if g.failGrab {
		return errors.New("bad access")
	}
	g.grabbed[combo] = true
	return nil
}

func (g *fakeGrabber) Ungrab(combo string) error {
	g.grabbed[combo] = false
	return nil
}

func (g *fakeGrabber) press(combo string) {
	if !g.grabbed[combo] {
		return
	}
	for _, h := range g.handlers[combo] {
		h()
	}
}

func TestX11Binder_ReinstallFiresOncePerPress(t *testing.T) {
	g := newFakeGrabber()
	var buf bytes.Buffer
	trigger := NewTrigger(newBinder(g), testLogger(&buf))

	opened, toggled := 0, 0
	bindings := []Binding{
		{Name: "open-settings", Combo: "Control-Shift-w", Action: func() { opened++ }},
		{Name: "toggle-minimize", Combo: "Control-Shift-s", Action: func() { toggled++ }},
	}
	for round := 0; round < 3; round++ {
		if n := trigger.Install(bindings); n != 2 {
			t.Fatalf("round %d: installed %d, want 2\n%s", round, n, buf.String())
		}
	}

	g.press("Control-Shift-w")
	g.press("Control-Shift-s")
	if opened != 1 || toggled != 1 {
		t.Fatalf("one press each ran opened=%d toggled=%d, want 1 and 1", opened, toggled)
	}
	if len(g.handlers["Control-Shift-w"]) != 1 {
		t.Fatalf("expected a single attached handler, got %d", len(g.handlers["Control-Shift-w"]))
	}
}

func TestX11Binder_UnregisteredComboDoesNothing(t *testing.T) {
	g := newFakeGrabber()
	b := newBinder(g)

	calls := 0
	if err := b.Register("Control-Shift-w", func() { calls++ }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := b.Unregister("Control-Shift-w"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if b.IsRegistered("Control-Shift-w") {
		t.Fatalf("expected combo to be released")
	}
	g.grabbed["Control-Shift-w"] = true
	g.press("Control-Shift-w")
	if calls != 0 {
		t.Fatalf("released combo still ran its callback")
	}
}

func TestX11Binder_RegrabFailureKeepsComboFree(t *testing.T) {
	g := newFakeGrabber()
	b := newBinder(g)
	if err := b.Register("Control-Shift-w", func() {}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := b.Unregister("Control-Shift-w"); err != nil {
		t.Fatalf("unregister: %v", err)
	}

	g.failGrab = true
	if err := b.Register("Control-Shift-w", func() {}); err == nil {
		t.Fatalf("expected regrab failure")
	}
	if b.IsRegistered("Control-Shift-w") {
		t.Fatalf("failed registration must not be recorded")
	}
}

func TestX11Binder_RejectsDoubleRegister(t *testing.T) {
	b := newBinder(newFakeGrabber())
	if err := b.Register("Control-Shift-w", func() {}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := b.Register("Control-Shift-w", func() {}); err == nil {
		t.Fatalf("expected second registration to fail")
	}
}
