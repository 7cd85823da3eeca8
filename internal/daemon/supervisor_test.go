package daemon

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/thejerf/suture/v4"
)

func TestEventHook_LogsServiceTermination(t *testing.T) {
	var buf bytes.Buffer
	hook := EventHook(slog.New(slog.NewTextHandler(&buf, nil)))

	hook(suture.EventServiceTerminate{
		SupervisorName: "wallboard",
		ServiceName:    "ipc",
		Err:            errors.New("socket in use"),
	})
	if !strings.Contains(buf.String(), "service failed") || !strings.Contains(buf.String(), "ipc") {
		t.Fatalf("unexpected log %q", buf.String())
	}
}

func TestServiceFunc(t *testing.T) {
	called := false
	svc := NewServiceFunc("probe", func(ctx context.Context) error {
		called = true
		return suture.ErrDoNotRestart
	})
	if svc.String() != "probe" {
		t.Fatalf("String = %q", svc.String())
	}
	if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) || !called {
		t.Fatalf("Serve = %v called=%v", err, called)
	}
}
