package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/settings"
)

func TestRunConfigSet_WritesFileDirectly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := config.NewStore(path).Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	before, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	code := runConfigSet([]string{"--path", path, "--view", "2", "--url", "https://status.test"})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	after, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Views[2].URL != "https://status.test" {
		t.Fatalf("slot 2 url = %q", after.Views[2].URL)
	}
	for _, slot := range []int{0, 1, 3} {
		if after.Views[slot].URL != before.Views[slot].URL {
			t.Fatalf("slot %d changed", slot)
		}
	}
}

func TestRunConfigSet_UsageErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	tests := []struct {
		name string
		args []string
	}{
		{"url without view", []string{"--path", path, "--url", "https://x.test"}},
		{"view without edit", []string{"--path", path, "--view", "1"}},
		{"apply with path", []string{"--path", path, "--view", "1", "--url", "https://x.test", "--apply"}},
		{"nothing to change", []string{"--path", path}},
	}
	if _, err := config.NewStore(path).Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := runConfigSet(tt.args); code != 2 {
				t.Fatalf("exit code = %d, want 2", code)
			}
		})
	}
}

func TestRunConfigSet_InvalidEditLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := config.NewStore(path).Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if code := runConfigSet([]string{"--path", path, "--monitor-mode", "index", "--monitor-value", "first"}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(after) != string(before) {
		t.Fatalf("file changed after a rejected save")
	}
}

func TestFileHost_ApplyNeedsDaemon(t *testing.T) {
	var h settings.Host = fileHost{store: config.NewStore(filepath.Join(t.TempDir(), "c.yaml"))}
	if err := h.ApplyConfig(context.Background()); !errors.Is(err, errNoDaemon) {
		t.Fatalf("expected errNoDaemon, got %v", err)
	}
	if _, err := h.ListMonitors(context.Background()); !errors.Is(err, errNoDaemon) {
		t.Fatalf("expected errNoDaemon, got %v", err)
	}
}

func TestRunConfig_ValidateReportsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nviews: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if code := runConfig([]string{"validate", "--path", path}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
