// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the application configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Rules
	RulesProfile string `json:"rules_profile,omitempty"` // Path to a YAML rule profile
	FormatType   string `json:"format_type,omitempty"`   // Default format when a request omits one

	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (report store)

	// Face detection
	APIKey        string `json:"api_key,omitempty"`        // Gemini API key
	FaceDetection bool   `json:"face_detection,omitempty"` // Enable the people-detected advisory
	RemoteImages  bool   `json:"remote_images,omitempty"`  // Download http(s) image sources for detection

	// Logging
	LogFile  string `json:"log_file,omitempty"`  // Rotating log file; stderr when empty
	LogLevel string `json:"log_level,omitempty"` // debug, info, warn or error
	LogJSON  bool   `json:"log_json,omitempty"`  // JSON log lines instead of text
	Verbose  bool   `json:"verbose,omitempty"`   // Print detailed debug information
}

// DefaultPort is the HTTP port used when none is configured
const DefaultPort = 8080

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.LogLevel != "" && !logLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("config error: 'log_level' must be one of debug, info, warn, error")
	}

	if c.RulesProfile != "" {
		if _, err := os.Stat(c.RulesProfile); os.IsNotExist(err) {
			return fmt.Errorf("config error: rules profile not found: %s", c.RulesProfile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.RulesProfile == "" {
		result.RulesProfile = defaults.RulesProfile
	}
	if result.FormatType == "" {
		result.FormatType = defaults.FormatType
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		if defaults.Port > 0 {
			result.Port = defaults.Port
		} else {
			result.Port = DefaultPort
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
