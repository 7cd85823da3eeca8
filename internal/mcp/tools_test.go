package mcp

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/host"
	"github.com/1broseidon/wallboard/internal/monitors"
)

type fakeHost struct {
	cfg      config.AppConfig
	applyErr error
	calls    []string
}

func (f *fakeHost) GetConfig(ctx context.Context) (config.AppConfig, error) {
	f.calls = append(f.calls, "get")
	return f.cfg.Clone(), nil
}

func (f *fakeHost) ListMonitors(ctx context.Context) ([]monitors.Info, error) {
	f.calls = append(f.calls, "monitors")
	return []monitors.Info{{Index: 0, Name: "DP-1", IsPrimary: true}}, nil
}

func (f *fakeHost) SaveConfig(ctx context.Context, cfg config.AppConfig) error {
	f.calls = append(f.calls, "save")
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.cfg = cfg
	return nil
}

func (f *fakeHost) ApplyConfig(ctx context.Context) error {
	f.calls = append(f.calls, "apply")
	return f.applyErr
}

func (f *fakeHost) OpenSettings(ctx context.Context) error {
	f.calls = append(f.calls, "open")
	return nil
}

func (f *fakeHost) ToggleMinimizeViews(ctx context.Context) error {
	f.calls = append(f.calls, "toggle")
	return nil
}

func sp(s string) *string { return &s }

func TestBuildEdits(t *testing.T) {
	edits := buildEdits(UpdateViewsInput{
		Monitor: &MonitorEditInput{Mode: "index", Value: "1"},
		Views: []ViewEditInput{
			{Slot: 0, URL: sp("https://a.test")},
			{Slot: 0, Profile: sp("kiosk")},
			{Slot: 2},
		},
	})

	if edits.Monitor == nil || edits.Monitor.Mode != config.MonitorIndex || edits.Monitor.Value != "1" {
		t.Fatalf("monitor edit = %+v", edits.Monitor)
	}
	if len(edits.Views) != 1 {
		t.Fatalf("expected only slot 0 to be edited, got %+v", edits.Views)
	}
	v := edits.Views[0]
	if *v.URL != "https://a.test" || *v.Profile != "kiosk" {
		t.Fatalf("slot 0 edit = %+v", v)
	}
}

func TestHandleUpdateViews_SavesAndPreservesUntouchedSlots(t *testing.T) {
	h := &fakeHost{cfg: config.DefaultConfig()}
	s := NewServer(h)

	_, out, err := s.handleUpdateViews(context.Background(), nil, UpdateViewsInput{
		Views: []ViewEditInput{{Slot: 1, URL: sp("https://b.test")}},
	})
	if err != nil {
		t.Fatalf("update_views: %v", err)
	}
	if !out.Saved || out.Applied {
		t.Fatalf("unexpected output %+v", out)
	}

	want := config.DefaultConfig()
	want.Views[1].URL = "https://b.test"
	if !reflect.DeepEqual(h.cfg, want) {
		t.Fatalf("saved %+v, want %+v", h.cfg, want)
	}
	if !reflect.DeepEqual(h.calls, []string{"get", "save"}) {
		t.Fatalf("calls = %v", h.calls)
	}
}

func TestHandleUpdateViews_ApplyFailureStillReportsSaved(t *testing.T) {
	h := &fakeHost{cfg: config.DefaultConfig(), applyErr: &host.ApplyError{Err: errors.New("no primary monitor reported")}}
	s := NewServer(h)

	_, out, err := s.handleUpdateViews(context.Background(), nil, UpdateViewsInput{
		Views: []ViewEditInput{{Slot: 0, URL: sp("https://a.test")}},
		Apply: true,
	})
	if err != nil {
		t.Fatalf("apply failure must not be a tool error: %v", err)
	}
	if !out.Saved || out.Applied {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestHandleUpdateViews_InvalidEditIsNotSaved(t *testing.T) {
	h := &fakeHost{cfg: config.DefaultConfig()}
	s := NewServer(h)

	_, _, err := s.handleUpdateViews(context.Background(), nil, UpdateViewsInput{
		Monitor: &MonitorEditInput{Mode: "index", Value: "two"},
		Apply:   true,
	})
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, c := range h.calls {
		if c == "apply" {
			t.Fatalf("apply issued after failed save")
		}
	}
}

func TestHandleUpdateViews_RequiresEdits(t *testing.T) {
	s := NewServer(&fakeHost{cfg: config.DefaultConfig()})
	if _, _, err := s.handleUpdateViews(context.Background(), nil, UpdateViewsInput{}); err == nil {
		t.Fatalf("expected error for empty edit set")
	}
}

func TestActionTools(t *testing.T) {
	h := &fakeHost{cfg: config.DefaultConfig()}
	s := NewServer(h)
	ctx := context.Background()

	if _, out, err := s.handleApplyConfig(ctx, nil, ActionInput{}); err != nil || !out.OK {
		t.Fatalf("apply_config: %v", err)
	}
	if _, out, err := s.handleToggleMinimize(ctx, nil, ActionInput{}); err != nil || !out.OK {
		t.Fatalf("toggle_minimize_views: %v", err)
	}
	if _, out, err := s.handleOpenSettings(ctx, nil, ActionInput{}); err != nil || !out.OK {
		t.Fatalf("open_settings: %v", err)
	}
	if _, out, err := s.handleListMonitors(ctx, nil, ListMonitorsInput{}); err != nil || len(out.Monitors) != 1 {
		t.Fatalf("list_monitors: %v", err)
	}
	if !reflect.DeepEqual(h.calls, []string{"apply", "toggle", "open", "monitors"}) {
		t.Fatalf("calls = %v", h.calls)
	}
}
