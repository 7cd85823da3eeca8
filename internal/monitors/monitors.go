// Package monitors provides on-demand snapshots of the connected displays
// and resolves a monitor selector against a snapshot.
package monitors

import (
	"context"
	"fmt"
	"strings"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/platform"
)

// Info describes one display as reported by the window system.
type Info struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`
	Position  [2]int `json:"position"`
	Size      [2]int `json:"size"`
}

// Bounds returns the display rectangle in screen coordinates.
func (i Info) Bounds() platform.Rect {
	return platform.Rect{X: i.Position[0], Y: i.Position[1], Width: i.Size[0], Height: i.Size[1]}
}

// QueryError reports a failed display enumeration.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query monitors: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DisplaySource enumerates the physical displays.
type DisplaySource interface {
	Displays() ([]platform.Display, error)
}

// Directory answers monitor queries. It never caches: every Snapshot asks
// the source again.
type Directory struct {
	source DisplaySource
}

// NewDirectory creates a directory backed by source.
func NewDirectory(source DisplaySource) *Directory {
	return &Directory{source: source}
}

// Snapshot returns the current displays. Index is the position in the
// returned list; order is not stable across calls.
func (d *Directory) Snapshot(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, &QueryError{Err: err}
	}
	if d == nil || d.source == nil {
		return nil, &QueryError{Err: fmt.Errorf("no display source")}
	}

	displays, err := d.source.Displays()
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	out := make([]Info, len(displays))
	for i, disp := range displays {
		out[i] = Info{
			Index:     i,
			Name:      disp.Name,
			IsPrimary: disp.Primary,
			Position:  [2]int{disp.Bounds.X, disp.Bounds.Y},
			Size:      [2]int{disp.Bounds.Width, disp.Bounds.Height},
		}
	}
	return out, nil
}

// Select resolves selector against list. The selector must already be valid.
func Select(list []Info, selector config.MonitorSelector) (Info, error) {
	if len(list) == 0 {
		return Info{}, fmt.Errorf("no monitors connected")
	}

	switch selector.Mode {
	case config.MonitorPrimary:
		for _, m := range list {
			if m.IsPrimary {
				return m, nil
			}
		}
		return Info{}, fmt.Errorf("no primary monitor reported")

	case config.MonitorIndex:
		idx, err := selector.Index()
		if err != nil {
			return Info{}, fmt.Errorf("invalid monitor index: %w", err)
		}
		if idx < 0 || idx >= len(list) {
			return Info{}, fmt.Errorf("monitor index %d out of range (%d connected)", idx, len(list))
		}
		return list[idx], nil

	case config.MonitorNameContains:
		if selector.Value == nil {
			return Info{}, fmt.Errorf("monitor name fragment is missing")
		}
		needle := strings.ToLower(strings.TrimSpace(*selector.Value))
		for _, m := range list {
			if strings.Contains(strings.ToLower(m.Name), needle) {
				return m, nil
			}
		}
		return Info{}, fmt.Errorf("no monitor name contains %q", *selector.Value)

	default:
		return Info{}, fmt.Errorf("unknown monitor mode %q", selector.Mode)
	}
}
