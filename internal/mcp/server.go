package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wallboard/internal/settings"
)

const (
	ServerName    = "wallboard"
	ServerVersion = "0.1.0"
)

// Host is the command contract the tools forward to, normally the daemon
// reached through the IPC client.
type Host interface {
	settings.Host
	OpenSettings(ctx context.Context) error
	ToggleMinimizeViews(ctx context.Context) error
}

// Server is the MCP server exposing the wallboard commands.
type Server struct {
	mcpServer *mcpsdk.Server
	host      Host
}

// NewServer creates a new MCP server forwarding to host.
func NewServer(host Host) *Server {
	s := &Server{host: host}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_config",
		Description: "Return the saved wallboard configuration: the monitor selector and the four views (id, url, profile) in slot order.",
	}, s.handleGetConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the connected monitors with index, name, primary flag, position and size. Queried fresh on every call.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "update_views",
		Description: "Edit view urls/profiles by slot and optionally the monitor selector, then save. Fields that are omitted keep their saved value. With apply=true the saved configuration is also applied; an apply failure is reported separately and the configuration stays saved.",
	}, s.handleUpdateViews)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_config",
		Description: "Place the four panels on the selected monitor according to the saved configuration.",
	}, s.handleApplyConfig)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_minimize_views",
		Description: "Minimize all panels, or restore them if they are minimized.",
	}, s.handleToggleMinimize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_settings",
		Description: "Open the settings surface on the wallboard host, or focus it if it is already open.",
	}, s.handleOpenSettings)
}
