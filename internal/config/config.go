package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"pvectl/internal/errors"
)

// Server represents a saved Proxmox VE endpoint profile. Secrets are never
// stored here; they come from the environment or an interactive prompt.
type Server struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	AuthMethod  string `yaml:"authMethod"`
	TokenID     string `yaml:"tokenId,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Realm       string `yaml:"realm,omitempty"`
	InsecureTLS bool   `yaml:"insecureTls"`
}

// Config represents the main configuration structure.
type Config struct {
	Version string   `yaml:"version"`
	Servers []Server `yaml:"servers"`
}

// validAuthMethods contains all supported authentication methods for a
// stored profile.
//
//nolint:gochecknoglobals // Package-level constants for auth validation
var validAuthMethods = []string{
	"api-token",
	"password",
}

// IsValidAuthMethod checks if the provided auth method is supported.
func IsValidAuthMethod(method string) bool {
	for _, valid := range validAuthMethods {
		if valid == method {
			return true
		}
	}
	return false
}

// GetSupportedAuthMethodsString returns a formatted string of all supported auth methods.
func GetSupportedAuthMethodsString() string {
	return strings.Join(validAuthMethods, ", ")
}

// Manager handles configuration file operations.
type Manager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager.
func NewConfigManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

// LoadConfig loads the configuration from the file system.
func (cm *Manager) LoadConfig() (*Config, error) {
	if _, err := os.Stat(cm.configPath); os.IsNotExist(err) {
		return &Config{
			Version: "1.0",
			Servers: []Server{},
		}, nil
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, errors.NewConfigurationError("config_path", cm.configPath, "failed to read config file", err)
	}

	if len(data) == 0 {
		return &Config{
			Version: "1.0",
			Servers: []Server{},
		}, nil
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, errors.NewConfigurationError("config_format", "yaml", "failed to unmarshal config", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the file system.
func (cm *Manager) SaveConfig(config *Config) error {
	if err := os.MkdirAll(filepath.Dir(cm.configPath), 0o750); err != nil {
		return errors.NewConfigurationError(
			"config_directory",
			filepath.Dir(cm.configPath),
			"failed to create config directory",
			err,
		)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.NewConfigurationError("config_format", "yaml", "failed to marshal config", err)
	}

	err = os.WriteFile(cm.configPath, data, 0o600)
	if err != nil {
		return errors.NewConfigurationError("config_path", cm.configPath, "failed to write config file", err)
	}

	return nil
}

// AddServer adds a new server profile to the configuration.
func (cm *Manager) AddServer(server Server) error {
	if !IsValidAuthMethod(server.AuthMethod) {
		return errors.NewValidationError(
			"auth_method",
			server.AuthMethod,
			"supported_values",
			fmt.Sprintf("auth method must be one of: %s", GetSupportedAuthMethodsString()),
		)
	}

	config, err := cm.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if server.ID == "" {
		server.ID = uuid.New().String()
	}

	config.Servers = append(config.Servers, server)

	return cm.SaveConfig(config)
}

// RemoveServer removes a server profile by ID from the configuration.
func (cm *Manager) RemoveServer(serverID string) error {
	config, err := cm.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	found := false
	newServers := make([]Server, 0, len(config.Servers))

	for _, server := range config.Servers {
		if server.ID != serverID {
			newServers = append(newServers, server)
		} else {
			found = true
		}
	}

	if !found {
		return errors.NewValidationError("server_id", serverID, "exists", "server not found")
	}

	config.Servers = newServers
	return cm.SaveConfig(config)
}

// RemoveServerByName removes a server profile by name from the configuration.
func (cm *Manager) RemoveServerByName(name string) error {
	config, err := cm.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	found := false
	newServers := make([]Server, 0, len(config.Servers))

	for _, server := range config.Servers {
		if server.Name != name {
			newServers = append(newServers, server)
		} else {
			found = true
		}
	}

	if !found {
		return errors.NewValidationError("server_name", name, "exists", "server not found")
	}

	config.Servers = newServers
	return cm.SaveConfig(config)
}

// GetServers returns all configured server profiles.
func (cm *Manager) GetServers() ([]Server, error) {
	config, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}

	return config.Servers, nil
}

// GetServerByName looks up a single server profile by name.
func (cm *Manager) GetServerByName(name string) (*Server, error) {
	config, err := cm.LoadConfig()
	if err != nil {
		return nil, err
	}

	for i := range config.Servers {
		if config.Servers[i].Name == name {
			return &config.Servers[i], nil
		}
	}

	return nil, errors.NewValidationError("server_name", name, "exists", "server not found")
}
