package settings

import (
	"context"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/editor"
	"github.com/1broseidon/wallboard/internal/monitors"
)

// Session owns the single working draft of one settings surface.
type Session struct {
	host   Host
	coord  *Coordinator
	base   config.AppConfig
	status string
}

// NewSession creates a session. Call Start before anything else.
func NewSession(host Host) *Session {
	return &Session{host: host, coord: NewCoordinator(host)}
}

// Start loads the document the draft is based on. A LoadError ends the
// session; no default is substituted.
func (s *Session) Start(ctx context.Context) error {
	cfg, err := s.host.GetConfig(ctx)
	if err != nil {
		return err
	}
	s.base = cfg
	s.status = ""
	return nil
}

// Base returns a copy of the document edits are reconciled against.
func (s *Session) Base() config.AppConfig {
	return s.base.Clone()
}

// Monitors queries the host. Results are never cached.
func (s *Session) Monitors(ctx context.Context) ([]monitors.Info, error) {
	return s.host.ListMonitors(ctx)
}

// Status returns the last status message.
func (s *Session) Status() string {
	return s.status
}

// Commit reconciles edits against the base document and saves the result,
// then applies it when apply is set. After a successful save the base
// becomes the saved document.
func (s *Session) Commit(ctx context.Context, edits editor.Edits, apply bool) Outcome {
	next, err := editor.Reconcile(s.base, edits)
	if err != nil {
		out := Outcome{SaveErr: err}
		s.status = out.Message()
		return out
	}

	var out Outcome
	if apply {
		out = s.coord.SaveAndApply(ctx, next)
	} else {
		out = s.coord.Save(ctx, next)
	}
	if out.Saved {
		s.base = next
	}
	s.status = out.Message()
	return out
}
