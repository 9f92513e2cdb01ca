package app

import (
	"context"
	"log/slog"

	"pvectl/internal/adapters/terminal"
	"pvectl/internal/config"
)

// App contains all application dependencies.
type App struct {
	// Profile store (always needed)
	ConfigManager *config.Manager

	// I/O dependencies
	PasswordReader *terminal.Adapter

	// Logging
	Logger *slog.Logger

	// Configuration
	Config *Config
}

// Config holds application configuration.
type Config struct {
	LogLevel   slog.Level
	Verbose    bool
	ConfigPath string
}

// Option is a functional option for configuring the App.
type Option func(*Config)

// WithLogLevel sets the logging level.
func WithLogLevel(level slog.Level) Option {
	return func(cfg *Config) {
		cfg.LogLevel = level
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(cfg *Config) {
		cfg.Verbose = verbose
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
	}
}

// WithConfigPath overrides the default profile store location.
func WithConfigPath(path string) Option {
	return func(cfg *Config) {
		cfg.ConfigPath = path
	}
}

// NewApp creates a new App with the given options.
func NewApp(ctx context.Context, opts ...Option) (*App, error) {
	cfg := &Config{
		LogLevel: slog.LevelInfo,
		Verbose:  false,
	}

	// Apply options.
	for _, opt := range opts {
		opt(cfg)
	}

	return NewAppWithConfig(ctx, cfg)
}
