package ipc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/editor"
	"github.com/1broseidon/wallboard/internal/host"
	"github.com/1broseidon/wallboard/internal/monitors"
)

func TestNewErrorResponseFor_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		path string
	}{
		{"load", &config.LoadError{Path: "/c.yaml", Err: errors.New("bad")}, KindLoad, "/c.yaml"},
		{"validation", &config.ValidationError{Path: "views.0.url", Err: errors.New("empty")}, KindValidation, "views.0.url"},
		{"wrapped validation", fmt.Errorf("invalid save payload: %w", &config.ValidationError{Path: "views", Err: errors.New("len")}), KindValidation, "views"},
		{"slot", &editor.SlotError{Slot: 7}, KindValidation, ""},
		{"persistence", &config.PersistenceError{Path: "/c.yaml", Err: errors.New("read-only")}, KindPersistence, "/c.yaml"},
		{"apply", &host.ApplyError{Err: &monitors.QueryError{Err: errors.New("randr")}}, KindApply, ""},
		{"query", &monitors.QueryError{Err: errors.New("randr")}, KindQuery, ""},
		{"plain", errors.New("boom"), "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewErrorResponseFor(tt.err)
			if resp.Status != "ERROR" || resp.Kind != tt.kind || resp.Path != tt.path {
				t.Fatalf("response = %+v, want kind %q path %q", resp, tt.kind, tt.path)
			}
			if resp.Err() == nil {
				t.Fatalf("expected rebuilt error")
			}
		})
	}
}

func TestResponseErr_RebuildsPersistenceDistinctFromValidation(t *testing.T) {
	resp := NewErrorResponseFor(&config.PersistenceError{Path: "/c.yaml", Err: errors.New("disk full")})
	err := resp.Err()

	var perr *config.PersistenceError
	var verr *config.ValidationError
	if !errors.As(err, &perr) || errors.As(err, &verr) {
		t.Fatalf("expected only PersistenceError, got %T %v", err, err)
	}
	if err.Error() != "save /c.yaml: disk full" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestResponseErr_OKIsNil(t *testing.T) {
	resp, err := NewOKResponse(nil)
	if err != nil {
		t.Fatalf("NewOKResponse: %v", err)
	}
	if resp.Err() != nil {
		t.Fatalf("expected nil error for OK response")
	}
}
