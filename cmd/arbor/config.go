package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arborworks/arbor/provider/openai"
)

// SnapshotConfig selects where run results are persisted.
type SnapshotConfig struct {
	// Store names the snapshot backend: "memory", "file", or empty to skip
	// saving.
	Store string `json:"store,omitempty" yaml:"store,omitempty"`

	// Dir is the directory for the "file" store.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// Config holds initialization parameters for a CLI run.
type Config struct {
	// Provider names the provider to build. Only "openai" ships with the CLI;
	// it also serves any OpenAI-compatible endpoint via base_url.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// SystemPrompt seeds the tree root when non-empty.
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`

	// Observer names the observability sink: "noop" or "slog".
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`

	OpenAI   openai.Config  `json:"openai,omitempty" yaml:"openai,omitempty"`
	Snapshot SnapshotConfig `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Observer: "noop",
		OpenAI:   openai.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	c.OpenAI.Merge(&source.OpenAI)
	if source.Snapshot.Store != "" {
		c.Snapshot.Store = source.Snapshot.Store
	}
	if source.Snapshot.Dir != "" {
		c.Snapshot.Dir = source.Snapshot.Dir
	}
}

// LoadConfig reads a config file, merges it with defaults, and returns the
// resulting Config. The format follows the file extension: .yaml/.yml parse
// as YAML, everything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
