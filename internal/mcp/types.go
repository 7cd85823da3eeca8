package mcp

import (
	"github.com/1broseidon/wallboard/internal/config"
	"github.com/1broseidon/wallboard/internal/monitors"
)

// GetConfigInput is the input for the get_config tool.
type GetConfigInput struct{}

// GetConfigOutput is the output for the get_config tool.
type GetConfigOutput struct {
	Config config.AppConfig `json:"config"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []monitors.Info `json:"monitors"`
}

// ViewEditInput edits one panel slot. Omitted fields keep their value.
type ViewEditInput struct {
	Slot    int     `json:"slot" jsonschema:"required,Slot index: 0 top-left, 1 top-right, 2 bottom-left, 3 bottom-right"`
	URL     *string `json:"url,omitempty" jsonschema:"New http(s) URL for the slot"`
	Profile *string `json:"profile,omitempty" jsonschema:"New storage profile; empty string resets to the default"`
}

// MonitorEditInput replaces the monitor selector.
type MonitorEditInput struct {
	Mode  string `json:"mode" jsonschema:"required,One of primary, index, name_contains"`
	Value string `json:"value,omitempty" jsonschema:"Monitor index or name fragment; ignored for primary"`
}

// UpdateViewsInput is the input for the update_views tool.
type UpdateViewsInput struct {
	Monitor *MonitorEditInput `json:"monitor,omitempty" jsonschema:"Optional monitor selector replacement"`
	Views   []ViewEditInput   `json:"views,omitempty" jsonschema:"Per-slot edits"`
	Apply   bool              `json:"apply,omitempty" jsonschema:"Apply the saved configuration to the live panels (default: false)"`
}

// UpdateViewsOutput is the output for the update_views tool.
type UpdateViewsOutput struct {
	Saved   bool             `json:"saved"`
	Applied bool             `json:"applied"`
	Message string           `json:"message"`
	Config  config.AppConfig `json:"config"`
}

// ActionInput is the input for tools that take no arguments and only
// trigger a host action.
type ActionInput struct{}

// ActionOutput is the output for action tools.
type ActionOutput struct {
	OK bool `json:"ok"`
}
