package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pvectl/internal/adapters/terminal"
	"pvectl/internal/config"
	"pvectl/internal/logging"
)

// NewAppWithConfig creates a new App with the given configuration, wiring all dependencies.
func NewAppWithConfig(ctx context.Context, cfg *Config) (*App, error) {
	logger := logging.NewLogger(cfg.LogLevel)

	configPath := cfg.ConfigPath
	if configPath == "" {
		resolved, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}
	configManager := config.NewConfigManager(configPath)

	// Create password reader with environment variable support.
	passwordReader := terminal.NewAdapter(os.Stdin, os.Stderr)

	logger.InfoContext(ctx, "Initializing pvectl with configuration",
		"logLevel", cfg.LogLevel.String(),
		"verbose", cfg.Verbose,
		"configPath", configPath)

	return &App{
		ConfigManager:  configManager,
		PasswordReader: passwordReader,
		Logger:         logger,
		Config:         cfg,
	}, nil
}

// DefaultConfigPath returns the path to the profile store file.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pvectl", "config.yaml"), nil
}
