package ipc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/host"
	"github.com/1broseidon/wallboard/internal/monitors"
)

type fakeHandler struct {
	cfg      config.AppConfig
	getErr   error
	applyErr error
	saved    []config.AppConfig
	opened   int
	toggled  int
	reloads  int
}

func (f *fakeHandler) GetConfig(ctx context.Context) (config.AppConfig, error) {
	return f.cfg, f.getErr
}

func (f *fakeHandler) ListMonitors(ctx context.Context) ([]monitors.Info, error) {
	return []monitors.Info{{Index: 0, Name: "DP-1", IsPrimary: true, Size: [2]int{1920, 1080}}}, nil
}

func (f *fakeHandler) SaveConfig(ctx context.Context, cfg config.AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.saved = append(f.saved, cfg)
	return nil
}

func (f *fakeHandler) ApplyConfig(ctx context.Context) error { return f.applyErr }

func (f *fakeHandler) OpenSettings(ctx context.Context) error {
	f.opened++
	return nil
}

func (f *fakeHandler) ToggleMinimizeViews(ctx context.Context) error {
	f.toggled++
	return nil
}

func (f *fakeHandler) Reload() error {
	f.reloads++
	return nil
}

func shortSocketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are length limited; t.TempDir can be too long.
	dir, err := os.MkdirTemp("", "wb")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T, h Handler, reload chan<- struct{}) *Client {
	t.Helper()
	socket := shortSocketPath(t)
	srv := NewServer(h, socket, reload, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return NewClientWithSocket(socket)
}

func sp(s string) *string { return &s }

func TestServer_GetConfigAndMonitors(t *testing.T) {
	h := &fakeHandler{cfg: config.DefaultConfig()}
	c := startServer(t, h, nil)

	cfg, err := c.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Views[3].ID != "bottomRight" || *cfg.Views[0].Profile != "view1" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	list, err := c.ListMonitors(context.Background())
	if err != nil {
		t.Fatalf("ListMonitors: %v", err)
	}
	if len(list) != 1 || !list[0].IsPrimary || list[0].Size != [2]int{1920, 1080} {
		t.Fatalf("unexpected monitors %+v", list)
	}
}

func TestServer_ErrorKindsSurviveTheWire(t *testing.T) {
	h := &fakeHandler{
		cfg:      config.DefaultConfig(),
		applyErr: &host.ApplyError{Err: errors.New("no monitor name contains \"VGA\"")},
	}
	c := startServer(t, h, nil)

	bad := config.DefaultConfig()
	bad.Monitor = config.MonitorSelector{Mode: config.MonitorIndex, Value: sp("two")}
	err := c.SaveConfig(context.Background(), bad)
	var verr *config.ValidationError
	if !errors.As(err, &verr) || verr.Path != "monitor.value" {
		t.Fatalf("expected ValidationError at monitor.value, got %v", err)
	}

	err = c.ApplyConfig(context.Background())
	var aerr *host.ApplyError
	if !errors.As(err, &aerr) || !strings.Contains(err.Error(), "VGA") {
		t.Fatalf("expected ApplyError, got %v", err)
	}
	if errors.As(err, &verr) {
		t.Fatalf("apply failure must not look like a save failure")
	}
}

func TestServer_LoadErrorKind(t *testing.T) {
	h := &fakeHandler{getErr: &config.LoadError{Path: "/etc/wb.yaml", Missing: true}}
	c := startServer(t, h, nil)

	_, err := c.GetConfig(context.Background())
	var lerr *config.LoadError
	if !errors.As(err, &lerr) || lerr.Path != "/etc/wb.yaml" {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestServer_RejectsWrongViewCountOnTheWire(t *testing.T) {
	h := &fakeHandler{}
	c := startServer(t, h, nil)

	payload := `{"config":{"version":1,"monitor":{"mode":"primary","value":null},"views":[{"id":"a","url":"https://a.test","profile":null}]}}`
	resp, err := c.sendRequest(context.Background(), &Request{Command: CommandSaveConfig, Payload: []byte(payload)})
	var verr *config.ValidationError
	if !errors.As(err, &verr) || verr.Path != "views" {
		t.Fatalf("expected views ValidationError, got resp=%+v err=%v", resp, err)
	}
	if len(h.saved) != 0 {
		t.Fatalf("nothing should be saved")
	}
}

func TestServer_SideActionsAndReload(t *testing.T) {
	h := &fakeHandler{}
	reload := make(chan struct{}, 1)
	c := startServer(t, h, reload)

	ctx := context.Background()
	if err := c.OpenSettings(ctx); err != nil {
		t.Fatalf("OpenSettings: %v", err)
	}
	if err := c.ToggleMinimizeViews(ctx); err != nil {
		t.Fatalf("ToggleMinimizeViews: %v", err)
	}
	if err := c.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if h.opened != 1 || h.toggled != 1 || h.reloads != 1 {
		t.Fatalf("unexpected handler calls: %+v", h)
	}
	select {
	case <-reload:
	default:
		t.Fatalf("expected reload notification")
	}
}

func TestServer_UnknownCommand(t *testing.T) {
	c := startServer(t, &fakeHandler{}, nil)

	_, err := c.sendRequest(context.Background(), &Request{Command: "NOPE"})
	if err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestClient_CancelledContextUnblocksHungDaemon(t *testing.T) {
	socket := shortSocketPath(t)
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			io.Copy(io.Discard, conn)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = NewClientWithSocket(socket).ApplyConfig(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
