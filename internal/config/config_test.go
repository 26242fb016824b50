package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test simulator defaults
	if cfg.Simulator.RouteLatitude != 40.7812 {
		t.Errorf("Simulator.RouteLatitude = %v, want 40.7812", cfg.Simulator.RouteLatitude)
	}
	if cfg.Simulator.RouteLongitude != -73.9665 {
		t.Errorf("Simulator.RouteLongitude = %v, want -73.9665", cfg.Simulator.RouteLongitude)
	}
	if cfg.Simulator.FixIntervalSecs != 1 {
		t.Errorf("Simulator.FixIntervalSecs = %v, want 1", cfg.Simulator.FixIntervalSecs)
	}
	if cfg.Simulator.PulseIntervalSec != 1 {
		t.Errorf("Simulator.PulseIntervalSec = %v, want 1", cfg.Simulator.PulseIntervalSec)
	}
	if cfg.Simulator.DeviceName != "Trekly Pulse Sim" {
		t.Errorf("Simulator.DeviceName = %q, want %q", cfg.Simulator.DeviceName, "Trekly Pulse Sim")
	}

	// Coach config should be empty by default
	if cfg.Coach.APIKey != "" {
		t.Errorf("Coach.APIKey should be empty, got %q", cfg.Coach.APIKey)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errContains string
	}{
		{
			name: "valid config",
			config: Config{
				Coach: CoachConfig{APIKey: "AIzaTestKey"},
			},
			expectError: false,
		},
		{
			name:        "empty api key",
			config:      Config{},
			expectError: true,
			errContains: "api_key",
		},
		{
			name: "placeholder api key",
			config: Config{
				Coach: CoachConfig{APIKey: "YOUR_GEMINI_API_KEY"},
			},
			expectError: true,
			errContains: "api_key",
		},
		{
			name: "negative fix interval",
			config: Config{
				Coach:     CoachConfig{APIKey: "AIzaTestKey"},
				Simulator: SimulatorConfig{FixIntervalSecs: -1},
			},
			expectError: true,
			errContains: "fix_interval_seconds",
		},
		{
			name: "negative pulse interval",
			config: Config{
				Coach:     CoachConfig{APIKey: "AIzaTestKey"},
				Simulator: SimulatorConfig{PulseIntervalSec: -5},
			},
			expectError: true,
			errContains: "pulse_interval_seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !containsString(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func containsString(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > 0 && containsStringHelper(s, substr))
}

func containsStringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
