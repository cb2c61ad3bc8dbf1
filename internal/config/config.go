package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds shelf server configuration
type ServerConfig struct {
	URL        string `mapstructure:"url"`         // Base server URL
	SelectPath string `mapstructure:"select_path"` // Select-asset endpoint
	UploadPath string `mapstructure:"upload_path"` // Upload-asset endpoint
	ListPath   string `mapstructure:"list_path"`   // List-assets endpoint
}

// ViewerConfig holds external document viewer configuration
type ViewerConfig struct {
	Command  string   `mapstructure:"command"`  // Viewer command, empty for auto-detect
	Args     []string `mapstructure:"args"`     // Additional viewer arguments
	Fragment string   `mapstructure:"fragment"` // URL fragment suppressing viewer chrome
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:        "",
			SelectPath: "/api/select",
			UploadPath: "/api/upload",
			ListPath:   "/api/list",
		},
		Viewer: ViewerConfig{
			Command:  "",
			Args:     []string{},
			Fragment: "toolbar=0",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "paperdeck", "paperdeck.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "paperdeck", "paperdeck.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "paperdeck")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "paperdeck")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "paperdeck", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "paperdeck", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("PAPERDECK")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("server.url", cfg.Server.URL)
	viper.Set("server.select_path", cfg.Server.SelectPath)
	viper.Set("server.upload_path", cfg.Server.UploadPath)
	viper.Set("server.list_path", cfg.Server.ListPath)

	viper.Set("viewer.command", cfg.Viewer.Command)
	viper.Set("viewer.args", cfg.Viewer.Args)
	viper.Set("viewer.fragment", cfg.Viewer.Fragment)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the shelf server URL is set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != ""
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
