package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/creative-compliance/internal/config"
	"github.com/jonathan/creative-compliance/internal/faces"
	"github.com/jonathan/creative-compliance/internal/fetch"
	"github.com/jonathan/creative-compliance/internal/llm"
	"github.com/jonathan/creative-compliance/internal/logging"
	"github.com/jonathan/creative-compliance/internal/rules"
	"github.com/jonathan/creative-compliance/internal/types"
	"github.com/jonathan/creative-compliance/internal/validation"
)

// Per-run option flags shared by validate, fix and import-html
var (
	optFormat  string
	optAlcohol bool
	optFaces   bool
)

func addOptionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&optFormat, "format", "", "Format type (overrides the design's options)")
	cmd.Flags().BoolVar(&optAlcohol, "alcohol", false, "Treat the creative as an alcohol promotion")
	cmd.Flags().BoolVar(&optFaces, "faces", false, "Run people detection on images (needs GEMINI_API_KEY)")
}

// applyOptionFlags overrides request options with the flags set on the command line
func applyOptionFlags(cmd *cobra.Command, cfg config.Config, opts *types.Options) {
	if cmd.Flags().Changed("format") {
		opts.FormatType = optFormat
	}
	if cmd.Flags().Changed("alcohol") {
		opts.IsAlcohol = optAlcohol
	}
	if cmd.Flags().Changed("faces") {
		opts.EnableFaceDetection = optFaces
	} else if cfg.FaceDetection {
		opts.EnableFaceDetection = true
	}
}

// loadSettings merges the config file, environment and global flags. Flags win.
func loadSettings() (config.Config, error) {
	fileCfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = loaded
	}

	overrides := config.Config{
		RulesProfile: profilePath,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		APIKey:       os.Getenv("GEMINI_API_KEY"),
		LogFile:      logFile,
		LogLevel:     logLevel,
	}
	cfg := overrides.MergeWithDefaults(*fileCfg)
	cfg.LogJSON = logJSON || fileCfg.LogJSON
	cfg.Verbose = verbose || fileCfg.Verbose
	cfg.FaceDetection = fileCfg.FaceDetection
	cfg.RemoteImages = fileCfg.RemoteImages

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *logging.Logger {
	level := cfg.LogLevel
	if level == "" && cfg.Verbose {
		level = "debug"
	}
	return logging.New(logging.Options{Level: level, JSON: cfg.LogJSON, File: cfg.LogFile})
}

// buildEngine loads the rule profile and wires the face detector when an API key is available
func buildEngine(cfg config.Config, logger *logging.Logger) (*validation.Engine, error) {
	ruleCfg := rules.DefaultConfig()
	if cfg.RulesProfile != "" {
		loaded, err := rules.LoadProfile(cfg.RulesProfile)
		if err != nil {
			return nil, err
		}
		ruleCfg = loaded
	}

	opts := []validation.Option{
		validation.WithLogger(logger.Logger),
		validation.WithDefaultFormat(cfg.FormatType),
	}
	if cfg.APIKey != "" {
		opts = append(opts, validation.WithFaceDetection(faces.NewCache(faces.GeminiLoader(cfg.APIKey, llm.DefaultConfig()))))
		if cfg.RemoteImages {
			opts = append(opts, validation.WithImageFetcher(fetch.NewCachedFetcher(nil)))
		}
	}
	return validation.NewEngine(ruleCfg, opts...), nil
}

// writeJSON writes v as indented JSON to path, creating parent directories
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
