package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/monitors"
)

// Host is the command contract as seen from the settings surface.
type Host interface {
	GetConfig(ctx context.Context) (config.AppConfig, error)
	ListMonitors(ctx context.Context) ([]monitors.Info, error)
	SaveConfig(ctx context.Context, cfg config.AppConfig) error
	ApplyConfig(ctx context.Context) error
}

// Outcome records what a save or save-and-apply actually achieved.
type Outcome struct {
	Saved    bool
	Applied  bool
	SaveErr  error
	ApplyErr error
}

// Err joins the save and apply failures.
func (o Outcome) Err() error {
	return errors.Join(o.SaveErr, o.ApplyErr)
}

// Message is the status line shown to the user. It always tells whether the
// document was persisted.
func (o Outcome) Message() string {
	var verr *config.ValidationError
	var perr *config.PersistenceError
	switch {
	case o.SaveErr != nil && errors.As(o.SaveErr, &verr):
		return fmt.Sprintf("Not saved: invalid configuration (%v). Your edits are kept.", o.SaveErr)
	case o.SaveErr != nil && errors.As(o.SaveErr, &perr):
		return fmt.Sprintf("Not saved: could not write the configuration (%v). Your edits are kept; try again.", o.SaveErr)
	case o.SaveErr != nil:
		return fmt.Sprintf("Not saved: %v", o.SaveErr)
	case o.ApplyErr != nil:
		return fmt.Sprintf("Saved, but not applied: %v", o.ApplyErr)
	case o.Applied:
		return "Saved & applied."
	case o.Saved:
		return "Saved."
	default:
		return ""
	}
}

// Coordinator sequences save and apply as two separate host calls.
type Coordinator struct {
	host Host
}

// NewCoordinator creates a coordinator over host.
func NewCoordinator(host Host) *Coordinator {
	return &Coordinator{host: host}
}

// Save persists cfg without touching the live panels.
func (c *Coordinator) Save(ctx context.Context, cfg config.AppConfig) Outcome {
	if err := c.host.SaveConfig(ctx, cfg); err != nil {
		return Outcome{SaveErr: err}
	}
	return Outcome{Saved: true}
}

// SaveAndApply persists cfg and, only if that succeeded, applies it.
func (c *Coordinator) SaveAndApply(ctx context.Context, cfg config.AppConfig) Outcome {
	out := c.Save(ctx, cfg)
	if !out.Saved {
		return out
	}
	if err := c.host.ApplyConfig(ctx); err != nil {
		out.ApplyErr = err
		return out
	}
	out.Applied = true
	return out
}
