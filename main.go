package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"trekly/internal/activity"
	"trekly/internal/coach"
	"trekly/internal/config"
	"trekly/internal/device"
	"trekly/internal/fundraiser"
	"trekly/internal/geo"
	"trekly/internal/location"
	"trekly/internal/logging"
	"trekly/internal/notify"
	"trekly/internal/profile"
	"trekly/internal/session"
	"trekly/internal/store"
	"trekly/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your Gemini API key.")
		fmt.Println("Get one from: https://aistudio.google.com/apikey")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Logging goes to a file so it doesn't fight the TUI for the terminal
	logger, err := logging.New()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Create services
	coachSvc := coach.NewGemini(cfg.Coach.APIKey)
	profiles := profile.NewManager(db, logger)
	activityLog := activity.NewLog(db, coachSvc, logger)
	center := notify.NewCenter(db, logger)
	book := fundraiser.NewBook(db, coachSvc, center, logger)

	tracker := session.NewTracker(coachSvc, logger)
	tracker.SetUnitSystem(profiles.Preferences().UnitSystem)

	positions := &location.Playback{
		Center: geo.Coords{
			Latitude:  cfg.Simulator.RouteLatitude,
			Longitude: cfg.Simulator.RouteLongitude,
		},
		Interval: time.Duration(cfg.Simulator.FixIntervalSecs) * time.Second,
	}
	devices := &device.Simulator{
		DeviceName: cfg.Simulator.DeviceName,
		Interval:   time.Duration(cfg.Simulator.PulseIntervalSec) * time.Second,
	}

	// Launch TUI
	app := tui.NewApp(profiles, activityLog, book, center, tracker, positions, devices)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
