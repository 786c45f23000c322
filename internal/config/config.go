package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Strava StravaConfig `json:"strava"`
	Export ExportConfig `json:"export"`

	// DataDir holds the SQLite registry; defaults to the config directory
	DataDir string `json:"data_dir"`
}

// StravaConfig holds Strava API credentials.
// RefreshToken is optional; when set, authentication is headless and the
// browser flow is skipped.
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// ExportConfig holds report generation settings
type ExportConfig struct {
	OutputDir string  `json:"output_dir"`
	LapMeters float64 `json:"lap_meters"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration.
// Directory defaults are resolved in Load because they depend on the
// config location.
func DefaultConfig() Config {
	return Config{
		Export: ExportConfig{
			LapMeters: 1000,
		},
	}
}

// Load reads the configuration from ~/.runsplits/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	configDir := filepath.Dir(path)
	if cfg.Export.LapMeters == 0 {
		cfg.Export.LapMeters = DefaultConfig().Export.LapMeters
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = filepath.Join(configDir, "exports")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = configDir
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.runsplits/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := Config{
		Strava: StravaConfig{
			ClientID:     "YOUR_CLIENT_ID",
			ClientSecret: "YOUR_CLIENT_SECRET",
		},
		Export: ExportConfig{
			LapMeters: 1000,
		},
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}

	if c.Export.LapMeters < 0 {
		return fmt.Errorf("export.lap_meters must be positive, got %v", c.Export.LapMeters)
	}

	return nil
}

// DBPath returns the path to the SQLite registry file
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "data.db")
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runsplits", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runsplits"), nil
}
