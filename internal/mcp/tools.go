package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/editor"
	"github.com/1broseidon/wallboard/internal/settings"
)

func (s *Server) handleGetConfig(ctx context.Context, _ *mcpsdk.CallToolRequest, _ GetConfigInput) (*mcpsdk.CallToolResult, GetConfigOutput, error) {
	cfg, err := s.host.GetConfig(ctx)
	if err != nil {
		return nil, GetConfigOutput{}, err
	}
	return nil, GetConfigOutput{Config: cfg}, nil
}

func (s *Server) handleListMonitors(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	list, err := s.host.ListMonitors(ctx)
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	return nil, ListMonitorsOutput{Monitors: list}, nil
}

func (s *Server) handleUpdateViews(ctx context.Context, _ *mcpsdk.CallToolRequest, args UpdateViewsInput) (*mcpsdk.CallToolResult, UpdateViewsOutput, error) {
	edits := buildEdits(args)
	if edits.Empty() {
		return nil, UpdateViewsOutput{}, fmt.Errorf("no edits given")
	}

	session := settings.NewSession(s.host)
	if err := session.Start(ctx); err != nil {
		return nil, UpdateViewsOutput{}, err
	}

	outcome := session.Commit(ctx, edits, args.Apply)
	if outcome.SaveErr != nil {
		return nil, UpdateViewsOutput{}, fmt.Errorf("not saved: %w", outcome.SaveErr)
	}

	return nil, UpdateViewsOutput{
		Saved:   outcome.Saved,
		Applied: outcome.Applied,
		Message: outcome.Message(),
		Config:  session.Base(),
	}, nil
}

func (s *Server) handleApplyConfig(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ActionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.host.ApplyConfig(ctx); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleToggleMinimize(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ActionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.host.ToggleMinimizeViews(ctx); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

func (s *Server) handleOpenSettings(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ActionInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.host.OpenSettings(ctx); err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, ActionOutput{OK: true}, nil
}

// buildEdits turns the tool arguments into a sparse edit set. Later entries
// for the same slot override earlier ones field by field.
func buildEdits(args UpdateViewsInput) editor.Edits {
	var edits editor.Edits
	if m := args.Monitor; m != nil {
		edits.SetMonitor(config.MonitorMode(m.Mode), m.Value)
	}
	for _, v := range args.Views {
		if v.URL != nil {
			edits.SetURL(v.Slot, *v.URL)
		}
		if v.Profile != nil {
			edits.SetProfile(v.Slot, *v.Profile)
		}
	}
	return edits
}
