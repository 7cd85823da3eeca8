package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/editor"
	"github.com/1broseidon/wallboard/internal/host"
	"github.com/1broseidon/wallboard/internal/monitors"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetConfig           CommandType = "GET_CONFIG"
	CommandListMonitors        CommandType = "LIST_MONITORS"
	CommandSaveConfig          CommandType = "SAVE_CONFIG"
	CommandApplyConfig         CommandType = "APPLY_CONFIG"
	CommandOpenSettings        CommandType = "OPEN_SETTINGS"
	CommandToggleMinimizeViews CommandType = "TOGGLE_MINIMIZE_VIEWS"
	CommandReload              CommandType = "RELOAD"
)

// ErrorKind classifies an error response so the client can rebuild the
// typed error.
type ErrorKind string

const (
	KindLoad        ErrorKind = "load"
	KindValidation  ErrorKind = "validation"
	KindPersistence ErrorKind = "persistence"
	KindApply       ErrorKind = "apply"
	KindQuery       ErrorKind = "query"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Kind   ErrorKind       `json:"kind,omitempty"`
	Path   string          `json:"path,omitempty"`
	Detail string          `json:"detail,omitempty"`
}

// SaveConfigPayload is the payload of SAVE_CONFIG.
type SaveConfigPayload struct {
	Config config.AppConfig `json:"config"`
}

// MonitorsData represents the data returned by LIST_MONITORS
type MonitorsData struct {
	Monitors []monitors.Info `json:"monitors"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// NewErrorResponseFor creates an error response that keeps the error kind.
func NewErrorResponseFor(err error) *Response {
	resp := NewErrorResponse(err.Error())

	var (
		applyErr *host.ApplyError
		loadErr  *config.LoadError
		valErr   *config.ValidationError
		persErr  *config.PersistenceError
		queryErr *monitors.QueryError
		slotErr  *editor.SlotError
	)
	switch {
	case errors.As(err, &applyErr):
		resp.Kind, resp.Detail = KindApply, causeText(applyErr.Err)
	case errors.As(err, &loadErr):
		resp.Kind, resp.Path = KindLoad, loadErr.Path
		if loadErr.Missing {
			resp.Detail = "config file does not exist"
		} else {
			resp.Detail = causeText(loadErr.Err)
		}
	case errors.As(err, &valErr):
		resp.Kind, resp.Path, resp.Detail = KindValidation, valErr.Path, causeText(valErr.Err)
	case errors.As(err, &slotErr):
		resp.Kind, resp.Detail = KindValidation, slotErr.Error()
	case errors.As(err, &persErr):
		resp.Kind, resp.Path, resp.Detail = KindPersistence, persErr.Path, causeText(persErr.Err)
	case errors.As(err, &queryErr):
		resp.Kind, resp.Detail = KindQuery, causeText(queryErr.Err)
	}
	return resp
}

// Err rebuilds the error carried by an error response. It returns nil for OK
// responses.
func (r *Response) Err() error {
	if r.Status != "ERROR" {
		return nil
	}
	cause := errors.New(r.Detail)
	switch r.Kind {
	case KindLoad:
		return &config.LoadError{Path: r.Path, Err: cause}
	case KindValidation:
		return &config.ValidationError{Path: r.Path, Err: cause}
	case KindPersistence:
		return &config.PersistenceError{Path: r.Path, Err: cause}
	case KindApply:
		return &host.ApplyError{Err: cause}
	case KindQuery:
		return &monitors.QueryError{Err: cause}
	default:
		return fmt.Errorf("daemon error: %s", r.Error)
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
