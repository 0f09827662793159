// Package config loads the AI configuration file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mydehq/plextitler/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	defaultEndpoint = "https://api.openai.com/v1"
	defaultModel    = "gpt-4"

	// envAPIKey is consulted when the config file omits api_key.
	envAPIKey = "OPENAI_API_KEY"
)

// file mirrors the on-disk layout: everything lives under a top-level
// `ai` mapping.
type file struct {
	AI types.AIConfig `yaml:"ai"`
}

// Load reads and validates the AI configuration. A missing file, bad
// YAML, or an empty system_prompt is an error; the run must not reach
// the network without a usable prompt.
func Load(path string) (*types.AIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := f.AI
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(envAPIKey)
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		return nil, fmt.Errorf("system_prompt is required in config file")
	}

	return &cfg, nil
}
