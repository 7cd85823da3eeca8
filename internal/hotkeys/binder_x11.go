package hotkeys

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// grabber is the X side of a binder. Connect attaches handler to combo's
// press event for the life of the connection and grabs the key; Grab and
// Ungrab only toggle the passive grab.
type grabber interface {
	Connect(combo string, handler func()) error
	Grab(combo string) error
	Ungrab(combo string) error
}

// X11Binder grabs key combinations on the root window. Callbacks fire on
// key press only and run on the X event loop goroutine.
//
// xgbutil cannot detach a single key handler, so each combo is connected at
// most once and dispatches through callbacks. Unregistering drops the grab
// and the callback; registering again only regrabs.
type X11Binder struct {
	grabs grabber

	mu        sync.Mutex
	callbacks map[string]func()
	connected map[string]bool
}

var ignoreModsOnce sync.Once

// NewX11Binder creates a binder for the given connection.
func NewX11Binder(xu *xgbutil.XUtil, root xproto.Window) *X11Binder {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	return newBinder(xgbGrabber{xu: xu, root: root})
}

func newBinder(g grabber) *X11Binder {
	return &X11Binder{
		grabs:     g,
		callbacks: make(map[string]func()),
		connected: make(map[string]bool),
	}
}

// IsRegistered reports whether combo is bound by this process.
func (b *X11Binder) IsRegistered(combo string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.callbacks[combo]
	return ok
}

// Register grabs combo and routes its press event to callback.
func (b *X11Binder) Register(combo string, callback func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.callbacks[combo]; ok {
		return fmt.Errorf("%q is already registered", combo)
	}
	if b.connected[combo] {
		if err := b.grabs.Grab(combo); err != nil {
			return err
		}
	} else {
		if err := b.grabs.Connect(combo, func() { b.dispatch(combo) }); err != nil {
			return err
		}
		b.connected[combo] = true
	}
	b.callbacks[combo] = callback
	return nil
}

// Unregister releases the grab for combo. Its handler stays attached but
// no longer runs anything.
func (b *X11Binder) Unregister(combo string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.callbacks[combo]; !ok {
		return nil
	}
	if err := b.grabs.Ungrab(combo); err != nil {
		return err
	}
	delete(b.callbacks, combo)
	return nil
}

func (b *X11Binder) dispatch(combo string) {
	b.mu.Lock()
	callback := b.callbacks[combo]
	b.mu.Unlock()
	if callback != nil {
		callback()
	}
}

type xgbGrabber struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

func (g xgbGrabber) Connect(combo string, handler func()) error {
	if g.xu == nil {
		return fmt.Errorf("no X connection")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		handler()
	}).Connect(g.xu, g.root, combo, true)
}

func (g xgbGrabber) Grab(combo string) error {
	if g.xu == nil {
		return fmt.Errorf("no X connection")
	}
	mods, keycodes, err := keybind.ParseString(g.xu, combo)
	if err != nil {
		return err
	}
	for _, code := range keycodes {
		if err := keybind.GrabChecked(g.xu, g.root, mods, code); err != nil {
			return err
		}
	}
	return nil
}

func (g xgbGrabber) Ungrab(combo string) error {
	if g.xu == nil {
		return fmt.Errorf("no X connection")
	}
	mods, keycodes, err := keybind.ParseString(g.xu, combo)
	if err != nil {
		return err
	}
	for _, code := range keycodes {
		keybind.Ungrab(g.xu, g.root, mods, code)
	}
	return nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	if xu == nil {
		return
	}

	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
