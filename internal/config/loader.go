package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "wallboard", "config.yaml"), nil
}

// Store is the canonical persisted document. It remembers the ids of the last
// loaded or saved document so that Save can refuse identity changes.
type Store struct {
	path string

	mu       sync.Mutex
	baseline *AppConfig
}

// NewStore creates a store backed by the YAML file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewDefaultStore creates a store at the standard location.
func NewDefaultStore() (*Store, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Init writes the default document when no file exists. An existing file is
// left untouched even when it is corrupt.
func (s *Store) Init() (bool, error) {
	exists, err := pathExists(s.path)
	if err != nil {
		return false, &PersistenceError{Path: s.path, Err: err}
	}
	if exists {
		return false, nil
	}
	if err := s.write(DefaultConfig()); err != nil {
		return false, err
	}
	return true, nil
}

// Load reads, decodes and validates the document.
func (s *Store) Load() (AppConfig, error) {
	cfg, err := LoadFromPath(s.path)
	if err != nil {
		return AppConfig{}, err
	}
	s.setBaseline(cfg)
	return cfg, nil
}

// Save validates cfg and persists it.
func (s *Store) Save(cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	baseline := s.baseline
	s.mu.Unlock()
	if baseline != nil {
		if err := CheckIdentity(*baseline, cfg); err != nil {
			return err
		}
	}
	if err := s.write(cfg); err != nil {
		return err
	}
	s.setBaseline(cfg)
	return nil
}

func (s *Store) setBaseline(cfg AppConfig) {
	c := cfg.Clone()
	s.mu.Lock()
	s.baseline = &c
	s.mu.Unlock()
}

func (s *Store) write(cfg AppConfig) error {
	data, err := Marshal(cfg)
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &PersistenceError{Path: s.path, Err: fmt.Errorf("failed to create config directory: %w", err)}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &PersistenceError{Path: s.path, Err: fmt.Errorf("failed to write config file: %w", err)}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return &PersistenceError{Path: s.path, Err: fmt.Errorf("failed to replace config file: %w", err)}
	}
	return nil
}

// Marshal encodes cfg the way it is written to disk.
func Marshal(cfg AppConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadFromPath reads a document without touching any store state.
func LoadFromPath(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, &LoadError{Path: path, Missing: true, Err: err}
		}
		return AppConfig{}, &LoadError{Path: path, Err: fmt.Errorf("failed to read: %w", err)}
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return AppConfig{}, &LoadError{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes and validates a document. file is used for error locations.
func Parse(data []byte, file string) (AppConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return AppConfig{}, fmt.Errorf("document is empty")
	}
	sources := collectSources(&doc, file)

	var cfg AppConfig
	if err := decodeStrictYAML(data, &cfg); err != nil {
		return AppConfig{}, attachSourceContext(unwrapYAMLError(err), sources)
	}
	// A version mismatch is reported before anything else so that fields of
	// an unknown schema are never reinterpreted.
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, attachSourceContext(err, sources)
	}
	return cfg, nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

// unwrapYAMLError surfaces a ValidationError returned from a custom
// unmarshaler, which yaml.v3 passes through unchanged.
func unwrapYAMLError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return err
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func collectSources(doc *yaml.Node, file string) map[string]Source {
	out := make(map[string]Source)
	if doc == nil {
		return out
	}
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	collectSourcesRec(node, file, "", out)
	return out
}

func collectSourcesRec(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			path := keyNode.Value
			if prefix != "" {
				path = prefix + "." + keyNode.Value
			}
			out[path] = Source{
				Kind:   SourceFile,
				File:   file,
				Line:   valNode.Line,
				Column: valNode.Column,
			}
			collectSourcesRec(valNode, file, path, out)
		}
	case yaml.SequenceNode:
		if prefix != "" {
			out[prefix] = Source{
				Kind:   SourceFile,
				File:   file,
				Line:   node.Line,
				Column: node.Column,
			}
		}
		// Track items by index so errors such as views.2.url resolve.
		for i, item := range node.Content {
			path := fmt.Sprintf("%s.%d", prefix, i)
			out[path] = Source{
				Kind:   SourceFile,
				File:   file,
				Line:   item.Line,
				Column: item.Column,
			}
			collectSourcesRec(item, file, path, out)
		}
	}
}

func attachSourceContext(err error, sources map[string]Source) error {
	verr, ok := err.(*ValidationError)
	if !ok || verr == nil {
		return err
	}
	if verr.Path == "" || strings.TrimSpace(verr.Source.File) != "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
