package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/monitors"
)

// Handler implements the commands served over the socket.
type Handler interface {
	GetConfig(ctx context.Context) (config.AppConfig, error)
	ListMonitors(ctx context.Context) ([]monitors.Info, error)
	SaveConfig(ctx context.Context, cfg config.AppConfig) error
	ApplyConfig(ctx context.Context) error
	OpenSettings(ctx context.Context) error
	ToggleMinimizeViews(ctx context.Context) error
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	reloadChan   chan<- struct{}
	ctx          context.Context
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. reloadChan, when non-nil, is notified
// after a successful RELOAD.
func NewServer(handler Handler, socketPath string, reloadChan chan<- struct{}, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		reloadChan: reloadChan,
		ctx:        context.Background(),
	}
}

// String names the server for supervision events.
func (s *Server) String() string { return "ipc" }

// Serve listens until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.ctx = ctx
	s.shuttingDown = false
	s.shutdownMu.Unlock()

	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove existing socket if present
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	// Accept connections
	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener and waits for the accept loop to exit.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown || s.listener == nil {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.listener.Close()
	s.wg.Wait()
	os.Remove(s.socketPath)
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		s.shutdownMu.Lock()
		ctx := s.ctx
		s.shutdownMu.Unlock()
		resp = s.handleCommand(ctx, req)
	}

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandGetConfig:
		cfg, err := s.handler.GetConfig(ctx)
		return respond(cfg, err)
	case CommandListMonitors:
		list, err := s.handler.ListMonitors(ctx)
		return respond(MonitorsData{Monitors: list}, err)
	case CommandSaveConfig:
		var payload SaveConfigPayload
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			return NewErrorResponseFor(fmt.Errorf("invalid save payload: %w", err))
		}
		return respond(nil, s.handler.SaveConfig(ctx, payload.Config))
	case CommandApplyConfig:
		return respond(nil, s.handler.ApplyConfig(ctx))
	case CommandOpenSettings:
		return respond(nil, s.handler.OpenSettings(ctx))
	case CommandToggleMinimizeViews:
		return respond(nil, s.handler.ToggleMinimizeViews(ctx))
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload re-reads the document and notifies the daemon
func (s *Server) handleReload() *Response {
	if err := s.handler.Reload(); err != nil {
		return NewErrorResponseFor(err)
	}

	// Notify the main daemon via channel (non-blocking)
	if s.reloadChan != nil {
		select {
		case s.reloadChan <- struct{}{}:
		default:
		}
	}

	s.logger.Info("IPC: config reloaded")
	return respond(nil, nil)
}

func respond(data any, err error) *Response {
	if err != nil {
		return NewErrorResponseFor(err)
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
