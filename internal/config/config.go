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
	Coach     CoachConfig     `json:"coach"`
	Simulator SimulatorConfig `json:"simulator"`
}

// CoachConfig holds AI coach API credentials
type CoachConfig struct {
	APIKey string `json:"api_key"`
}

// SimulatorConfig holds settings for the simulated GPS route and
// heart rate strap used during tracking
type SimulatorConfig struct {
	RouteLatitude    float64 `json:"route_latitude"`
	RouteLongitude   float64 `json:"route_longitude"`
	FixIntervalSecs  int     `json:"fix_interval_seconds"`
	PulseIntervalSec int     `json:"pulse_interval_seconds"`
	DeviceName       string  `json:"device_name"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Simulator: SimulatorConfig{
			RouteLatitude:    40.7812,
			RouteLongitude:   -73.9665,
			FixIntervalSecs:  1,
			PulseIntervalSec: 1,
			DeviceName:       "Trekly Pulse Sim",
		},
	}
}

// Load reads the configuration from ~/.trekly/config.json
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
	defaults := DefaultConfig()
	if cfg.Simulator.RouteLatitude == 0 && cfg.Simulator.RouteLongitude == 0 {
		cfg.Simulator.RouteLatitude = defaults.Simulator.RouteLatitude
		cfg.Simulator.RouteLongitude = defaults.Simulator.RouteLongitude
	}
	if cfg.Simulator.FixIntervalSecs == 0 {
		cfg.Simulator.FixIntervalSecs = defaults.Simulator.FixIntervalSecs
	}
	if cfg.Simulator.PulseIntervalSec == 0 {
		cfg.Simulator.PulseIntervalSec = defaults.Simulator.PulseIntervalSec
	}
	if cfg.Simulator.DeviceName == "" {
		cfg.Simulator.DeviceName = defaults.Simulator.DeviceName
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.trekly/config.json
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

	example := DefaultConfig()
	example.Coach.APIKey = "YOUR_GEMINI_API_KEY"

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Coach.APIKey == "" || c.Coach.APIKey == "YOUR_GEMINI_API_KEY" {
		return errors.New("coach.api_key is required - get one from https://aistudio.google.com/apikey")
	}

	if c.Simulator.FixIntervalSecs < 0 {
		return fmt.Errorf("simulator.fix_interval_seconds must not be negative, got %d", c.Simulator.FixIntervalSecs)
	}
	if c.Simulator.PulseIntervalSec < 0 {
		return fmt.Errorf("simulator.pulse_interval_seconds must not be negative, got %d", c.Simulator.PulseIntervalSec)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".trekly", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".trekly"), nil
}
