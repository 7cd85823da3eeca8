package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/editor"
	"github.com/1broseidon/wallboard/internal/monitors"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

const (
	actionSave    = "save"
	actionApply   = "apply"
	actionRefresh = "refresh"
	actionClose   = "close"
)

var slotNames = [config.ViewCount]string{"Top left", "Top right", "Bottom left", "Bottom right"}

// formState holds the values bound to the form inputs.
type formState struct {
	mode     string
	value    string
	urls     [config.ViewCount]string
	profiles [config.ViewCount]string
	advanced bool
	action   string
}

func newFormState(cfg config.AppConfig, advanced bool) *formState {
	st := &formState{mode: string(cfg.Monitor.Mode), advanced: advanced, action: actionSave}
	if cfg.Monitor.Value != nil {
		st.value = *cfg.Monitor.Value
	}
	for i, v := range cfg.Views {
		st.urls[i] = v.URL
		if v.Profile != nil {
			st.profiles[i] = *v.Profile
		}
	}
	return st
}

// edits returns the inputs that were rendered. Profile inputs only exist
// while the advanced section is shown.
func (st *formState) edits() editor.Edits {
	var e editor.Edits
	e.SetMonitor(config.MonitorMode(st.mode), st.value)
	for i := range st.urls {
		e.SetURL(i, st.urls[i])
		if st.advanced {
			e.SetProfile(i, st.profiles[i])
		}
	}
	return e
}

func (st *formState) build(ids [config.ViewCount]string, monitorText, status string) *huh.Form {
	modeOpts := []huh.Option[string]{
		huh.NewOption("Primary monitor", string(config.MonitorPrimary)),
		huh.NewOption("By index", string(config.MonitorIndex)),
		huh.NewOption("Name contains", string(config.MonitorNameContains)),
	}

	viewFields := make([]huh.Field, 0, config.ViewCount+1)
	profileFields := make([]huh.Field, 0, config.ViewCount)
	for i := range st.urls {
		viewFields = append(viewFields, huh.NewInput().
			Key(fmt.Sprintf("url_%d", i)).
			Title(fmt.Sprintf("%s URL", slotNames[i])).
			Description(fmt.Sprintf("View %q", ids[i])).
			Value(&st.urls[i]))
		profileFields = append(profileFields, huh.NewInput().
			Key(fmt.Sprintf("profile_%d", i)).
			Title(fmt.Sprintf("%s profile", slotNames[i])).
			Description("Storage partition; leave empty for the default").
			Value(&st.profiles[i]))
	}
	viewFields = append(viewFields, huh.NewConfirm().
		Key("advanced").
		Title("Show advanced settings?").
		Value(&st.advanced))

	if status == "" {
		status = "Choose what to do with your edits."
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Monitors").
				Description(monitorText),
			huh.NewSelect[string]().
				Key("monitor_mode").
				Title("Monitor selection").
				Options(modeOpts...).
				Value(&st.mode),
			huh.NewInput().
				Key("monitor_value").
				Title("Monitor value").
				Description("Index for \"By index\", name fragment for \"Name contains\"").
				Value(&st.value),
		),
		huh.NewGroup(viewFields...),
		huh.NewGroup(profileFields...).WithHideFunc(func() bool { return !st.advanced }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Action").
				Description(status).
				Options(
					huh.NewOption("Save", actionSave),
					huh.NewOption("Save & apply", actionApply),
					huh.NewOption("Refresh monitors", actionRefresh),
					huh.NewOption("Close", actionClose),
				).
				Value(&st.action),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func describeMonitors(list []monitors.Info, err error) string {
	if err != nil {
		return fmt.Sprintf("Monitors unavailable: %v", err)
	}
	if len(list) == 0 {
		return "No monitors reported."
	}
	var b strings.Builder
	for _, m := range list {
		fmt.Fprintf(&b, "%d: %s %dx%d+%d+%d", m.Index, m.Name, m.Size[0], m.Size[1], m.Position[0], m.Position[1])
		if m.IsPrimary {
			b.WriteString(" (primary)")
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// RunForm drives the interactive settings form until the user closes it.
// Status lines are also written to out.
func RunForm(ctx context.Context, session *Session, out io.Writer) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("settings requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	st := newFormState(session.Base(), false)
	for {
		list, err := session.Monitors(ctx)
		form := st.build(session.Base().IDs(), describeMonitors(list, err), session.Status())
		if err := form.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		switch st.action {
		case actionClose:
			return nil
		case actionRefresh:
			continue
		case actionSave, actionApply:
			outcome := session.Commit(ctx, st.edits(), st.action == actionApply)
			fmt.Fprintln(out, outcome.Message())
			if outcome.Saved {
				st = newFormState(session.Base(), st.advanced)
			}
		}
	}
}
