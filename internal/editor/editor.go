// Package editor reconciles sparse user edits against a loaded document.
//
// An edit set only names the inputs a settings surface actually rendered. A
// nil field means "not rendered" and keeps the prior value; a non-nil field
// that trims to empty is a real edit.
package editor

import (
	"fmt"
	"strings"

	"github.com/1broseidon/wallboard/internal/config"
)

// ViewEdit holds the rendered inputs for one slot.
type ViewEdit struct {
	URL     *string
	Profile *string
}

// MonitorEdit replaces the monitor selector as a whole.
type MonitorEdit struct {
	Mode  config.MonitorMode
	Value string
}

// Edits is a sparse patch keyed by slot index.
type Edits struct {
	Monitor *MonitorEdit
	Views   map[int]ViewEdit
}

// SlotError reports an edit addressed to a slot that does not exist.
type SlotError struct {
	Slot int
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("view slot %d out of range (0..%d)", e.Slot, config.ViewCount-1)
}

// SetURL records a url edit for slot.
func (e *Edits) SetURL(slot int, url string) {
	e.update(slot, func(v *ViewEdit) { v.URL = &url })
}

// SetProfile records a profile edit for slot.
func (e *Edits) SetProfile(slot int, profile string) {
	e.update(slot, func(v *ViewEdit) { v.Profile = &profile })
}

// SetMonitor records a monitor selector edit.
func (e *Edits) SetMonitor(mode config.MonitorMode, value string) {
	e.Monitor = &MonitorEdit{Mode: mode, Value: value}
}

// Empty reports whether the edit set changes nothing.
func (e Edits) Empty() bool {
	return e.Monitor == nil && len(e.Views) == 0
}

func (e *Edits) update(slot int, fn func(*ViewEdit)) {
	if e.Views == nil {
		e.Views = make(map[int]ViewEdit)
	}
	v := e.Views[slot]
	fn(&v)
	e.Views[slot] = v
}

// Reconcile applies edits to prev and returns a new, fully populated
// document. Slots are matched by position, never by id. The result is not
// validated; that happens when the document is saved.
func Reconcile(prev config.AppConfig, edits Edits) (config.AppConfig, error) {
	for slot := range edits.Views {
		if slot < 0 || slot >= config.ViewCount {
			return config.AppConfig{}, &SlotError{Slot: slot}
		}
	}

	next := prev.Clone()

	if m := edits.Monitor; m != nil {
		next.Monitor = config.MonitorSelector{
			Mode:  m.Mode,
			Value: normalizeOptional(m.Value),
		}
	}

	for slot, edit := range edits.Views {
		view := &next.Views[slot]
		if edit.URL != nil {
			view.URL = strings.TrimSpace(*edit.URL)
		}
		if edit.Profile != nil {
			view.Profile = normalizeOptional(*edit.Profile)
		}
	}

	return next, nil
}

// normalizeOptional trims s and maps the empty string to absent.
func normalizeOptional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
