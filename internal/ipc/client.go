package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/monitors"
	"github.com/1broseidon/wallboard/internal/runtimepath"
)

// Client handles IPC communication with the daemon. Calls block until the
// daemon answers or ctx is done; no timeout is imposed here.
type Client struct {
	socketPath string
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
	}
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(ctx context.Context, req *Request) (*Response, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Unblock reads when the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) call(ctx context.Context, command CommandType, payload any) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}
	return c.sendRequest(ctx, req)
}

// GetConfig retrieves the daemon's current document.
func (c *Client) GetConfig(ctx context.Context) (config.AppConfig, error) {
	resp, err := c.call(ctx, CommandGetConfig, nil)
	if err != nil {
		return config.AppConfig{}, err
	}

	var cfg config.AppConfig
	if err := json.Unmarshal(resp.Data, &cfg); err != nil {
		return config.AppConfig{}, fmt.Errorf("failed to parse config data: %w", err)
	}
	return cfg, nil
}

// ListMonitors retrieves a fresh monitor snapshot.
func (c *Client) ListMonitors(ctx context.Context) ([]monitors.Info, error) {
	resp, err := c.call(ctx, CommandListMonitors, nil)
	if err != nil {
		return nil, err
	}

	var data MonitorsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse monitors data: %w", err)
	}
	return data.Monitors, nil
}

// SaveConfig asks the daemon to validate and persist cfg.
func (c *Client) SaveConfig(ctx context.Context, cfg config.AppConfig) error {
	_, err := c.call(ctx, CommandSaveConfig, SaveConfigPayload{Config: cfg})
	return err
}

// ApplyConfig asks the daemon to converge the panels onto the saved document.
func (c *Client) ApplyConfig(ctx context.Context) error {
	_, err := c.call(ctx, CommandApplyConfig, nil)
	return err
}

// OpenSettings asks the daemon to show the settings surface.
func (c *Client) OpenSettings(ctx context.Context) error {
	_, err := c.call(ctx, CommandOpenSettings, nil)
	return err
}

// ToggleMinimizeViews asks the daemon to minimize or restore the panels.
func (c *Client) ToggleMinimizeViews(ctx context.Context) error {
	_, err := c.call(ctx, CommandToggleMinimizeViews, nil)
	return err
}

// Reload asks the daemon to re-read the document and re-install hotkeys.
func (c *Client) Reload(ctx context.Context) error {
	_, err := c.call(ctx, CommandReload, nil)
	return err
}
