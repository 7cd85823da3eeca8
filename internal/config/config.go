package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the only document version this build reads or writes.
const SchemaVersion = 1

// ViewCount is the fixed number of panel slots.
const ViewCount = 4

// MonitorMode selects how the wallboard monitor is chosen.
type MonitorMode string

const (
	MonitorPrimary      MonitorMode = "primary"
	MonitorIndex        MonitorMode = "index"
	MonitorNameContains MonitorMode = "name_contains"
)

// MonitorSelector is a rule choosing the physical display hosting the panels.
// Value is ignored for MonitorPrimary.
type MonitorSelector struct {
	Mode  MonitorMode `yaml:"mode" json:"mode"`
	Value *string     `yaml:"value" json:"value"`
}

// ViewConfig describes the content of one panel slot.
type ViewConfig struct {
	ID      string  `yaml:"id" json:"id"`
	URL     string  `yaml:"url" json:"url"`
	Profile *string `yaml:"profile" json:"profile"` // nil defers to the host default
}

// DefaultProfilePrefix names the storage partition of a view with no
// explicit profile.
const DefaultProfilePrefix = "view-"

// ProfileName returns the storage partition the view runs in.
func (v ViewConfig) ProfileName() string {
	if v.Profile != nil {
		return *v.Profile
	}
	return DefaultProfilePrefix + v.ID
}

var viewKeys = map[string]bool{"id": true, "url": true, "profile": true}

// Views is the positional panel layout: top-left, top-right, bottom-left,
// bottom-right.
type Views [ViewCount]ViewConfig

// AppConfig is the persisted wallboard document.
type AppConfig struct {
	Version int             `yaml:"version" json:"version"`
	Monitor MonitorSelector `yaml:"monitor" json:"monitor"`
	Views   Views           `yaml:"views" json:"views"`
}

func strPtr(s string) *string { return &s }

// DefaultConfig returns the document the host writes when none exists yet.
func DefaultConfig() AppConfig {
	return AppConfig{
		Version: SchemaVersion,
		Monitor: MonitorSelector{Mode: MonitorPrimary},
		Views: Views{
			{ID: "topLeft", URL: "https://example.com", Profile: strPtr("view1")},
			{ID: "topRight", URL: "https://example.org", Profile: strPtr("view2")},
			{ID: "bottomLeft", URL: "https://example.net", Profile: strPtr("view3")},
			{ID: "bottomRight", URL: "https://www.wikipedia.org", Profile: strPtr("view4")},
		},
	}
}

// Clone returns a deep copy that shares no pointers with c.
func (c AppConfig) Clone() AppConfig {
	out := c
	if c.Monitor.Value != nil {
		out.Monitor.Value = strPtr(*c.Monitor.Value)
	}
	for i := range c.Views {
		if c.Views[i].Profile != nil {
			out.Views[i].Profile = strPtr(*c.Views[i].Profile)
		}
	}
	return out
}

// IDs returns the view ids in slot order.
func (c AppConfig) IDs() [ViewCount]string {
	var ids [ViewCount]string
	for i, v := range c.Views {
		ids[i] = v.ID
	}
	return ids
}

// UnmarshalYAML rejects sequences that are not exactly ViewCount long.
func (v *Views) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		for i, item := range node.Content {
			if err := checkViewKeys(i, item); err != nil {
				return err
			}
		}
	}
	var list []ViewConfig
	if err := node.Decode(&list); err != nil {
		return err
	}
	return v.fromSlice(list)
}

// checkViewKeys rejects unknown keys in a view mapping. node.Decode does
// not inherit the strict decoder's KnownFields setting.
func checkViewKeys(slot int, item *yaml.Node) error {
	if item.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(item.Content); i += 2 {
		key := item.Content[i].Value
		if !viewKeys[key] {
			return &ValidationError{
				Path: fmt.Sprintf("views.%d.%s", slot, key),
				Err:  fmt.Errorf("unknown field %q (expected id, url or profile)", key),
			}
		}
	}
	return nil
}

// UnmarshalJSON rejects arrays that are not exactly ViewCount long.
func (v *Views) UnmarshalJSON(data []byte) error {
	var list []ViewConfig
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	return v.fromSlice(list)
}

func (v *Views) fromSlice(list []ViewConfig) error {
	if len(list) != ViewCount {
		return &ValidationError{Path: "views", Err: fmt.Errorf("expected exactly %d views, got %d", ViewCount, len(list))}
	}
	copy(v[:], list)
	return nil
}

// Validate performs strict validation of the document invariants.
func (c *AppConfig) Validate() error {
	if c.Version != SchemaVersion {
		return &ValidationError{Path: "version", Err: fmt.Errorf("unsupported schema version %d (expected %d)", c.Version, SchemaVersion)}
	}
	if err := c.Monitor.Validate(); err != nil {
		return err
	}

	seen := make(map[string]int, ViewCount)
	profiles := make(map[string]int, ViewCount)
	for i, v := range c.Views {
		path := fmt.Sprintf("views.%d", i)
		if strings.TrimSpace(v.ID) == "" {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("id is required")}
		}
		if prev, ok := seen[v.ID]; ok {
			return &ValidationError{Path: path + ".id", Err: fmt.Errorf("id %q duplicates views.%d", v.ID, prev)}
		}
		seen[v.ID] = i
		if err := validateURL(v.URL); err != nil {
			return &ValidationError{Path: path + ".url", Err: fmt.Errorf("url for %q %w", v.ID, err)}
		}
		if v.Profile != nil && strings.TrimSpace(*v.Profile) == "" {
			return &ValidationError{Path: path + ".profile", Err: fmt.Errorf("profile must be omitted rather than empty")}
		}
		// A browser profile directory can only be held by one process.
		name := v.ProfileName()
		if prev, ok := profiles[name]; ok {
			return &ValidationError{Path: path + ".profile", Err: fmt.Errorf("profile %q is already used by views.%d", name, prev)}
		}
		profiles[name] = i
	}
	return nil
}

// Validate checks that Value parses for the selected mode.
func (s MonitorSelector) Validate() error {
	switch s.Mode {
	case MonitorPrimary:
		return nil
	case MonitorIndex:
		if s.Value == nil {
			return &ValidationError{Path: "monitor.value", Err: fmt.Errorf("index mode requires a monitor index")}
		}
		if !isDigits(*s.Value) {
			return &ValidationError{Path: "monitor.value", Err: fmt.Errorf("index mode requires a plain decimal index such as \"0\", got %q", *s.Value)}
		}
		return nil
	case MonitorNameContains:
		if s.Value == nil || strings.TrimSpace(*s.Value) == "" {
			return &ValidationError{Path: "monitor.value", Err: fmt.Errorf("name_contains mode requires a non-empty name fragment")}
		}
		return nil
	default:
		return &ValidationError{Path: "monitor.mode", Err: fmt.Errorf("mode must be one of: primary, index, name_contains")}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Index returns the parsed monitor index for MonitorIndex selectors.
func (s MonitorSelector) Index() (int, error) {
	if s.Mode != MonitorIndex || s.Value == nil {
		return 0, fmt.Errorf("selector is not an index selector")
	}
	return strconv.Atoi(strings.TrimSpace(*s.Value))
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return fmt.Errorf("must start with http:// or https://")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %v", err)
	}
	if u.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}

// CheckIdentity verifies that next keeps the slot ids of prev.
func CheckIdentity(prev, next AppConfig) error {
	for i := range prev.Views {
		if prev.Views[i].ID != next.Views[i].ID {
			return &ValidationError{
				Path: fmt.Sprintf("views.%d.id", i),
				Err:  fmt.Errorf("id is immutable: %q changed to %q", prev.Views[i].ID, next.Views[i].ID),
			}
		}
	}
	return nil
}
