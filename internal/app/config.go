package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	TemplateDir string
	OutputDir   string

	VarFiles []string
	Vars     []string // name=value
	Exclude  []string

	Workers   int
	FailFast  bool
	Overwrite bool
	DryRun    bool

	LogFormat string
	LogLevel  string

	NotifyURL     string
	NotifyTimeout time.Duration
	NotifyWaitAck bool
}

// NewConfig validates cfg and returns a copy with defaults applied.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.TemplateDir == "" {
		return nil, errors.New("template directory is required")
	}
	if cfg.OutputDir == "" && !cfg.DryRun {
		return nil, errors.New("output directory is required")
	}
	if cfg.OutputDir != "" && filepath.Clean(cfg.OutputDir) == filepath.Clean(cfg.TemplateDir) {
		return nil, errors.New("output directory must differ from the template directory")
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn' or 'error'", cfg.LogLevel)
	}

	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.NotifyTimeout < 0 {
		return nil, fmt.Errorf("notify timeout must not be negative, got %s", cfg.NotifyTimeout)
	}

	return &cfg, nil
}
