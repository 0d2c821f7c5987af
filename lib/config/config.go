// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "MULTISEAT_CONFIG"

// MaxSeatsLimit is the most seats the function keys can address (F1-F24).
const MaxSeatsLimit = 24

// Config is the master configuration for multiseat.
type Config struct {
	// Seats bounds and names the seats.
	Seats SeatsConfig `yaml:"seats"`

	// Topology tunes the hub ancestry walk.
	Topology TopologyConfig `yaml:"topology"`

	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Display configures the per-seat display service.
	Display DisplayConfig `yaml:"display"`

	// Assignment configures the interactive claim phase.
	Assignment AssignmentConfig `yaml:"assignment"`

	// LogLevel is debug, info, warn, or error.
	// Default: info
	LogLevel string `yaml:"log_level"`
}

// SeatsConfig bounds and names the seats.
type SeatsConfig struct {
	// MaxSeats caps the number of seats beyond seat0, whatever the
	// hardware allows. At most 24.
	// Default: 10
	MaxSeats int `yaml:"max_seats"`

	// SeatPrefix is prepended to the PCI-derived part of seat names.
	// Default: seat-
	SeatPrefix string `yaml:"seat_prefix"`
}

// TopologyConfig tunes the hub ancestry walk.
type TopologyConfig struct {
	// HubTag is the udev tag marking a seat-capable hub.
	// Default: seat
	HubTag string `yaml:"hub_tag"`

	// RootHubVendor is the USB vendor id of root hubs, which are never
	// seat-capable.
	// Default: 1d6b
	RootHubVendor string `yaml:"root_hub_vendor"`

	// MaxAncestryDepth bounds the walk from an input device to its hub.
	// Default: 32
	MaxAncestryDepth int `yaml:"max_ancestry_depth"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// XorgConfigDir receives one 90-<seat>.conf per configured seat.
	// Default: /etc/X11/xorg.conf.d
	XorgConfigDir string `yaml:"xorg_config_dir"`
}

// DisplayConfig configures the per-seat display service.
type DisplayConfig struct {
	// UnitTemplate is the systemd template unit started per seat; the
	// display index becomes the instance name.
	// Default: multiseat-xorg@.service
	UnitTemplate string `yaml:"unit_template"`

	// StartUnits starts each seat's display unit as soon as it is
	// enabled instead of at the next boot.
	// Default: false
	StartUnits bool `yaml:"start_units"`
}

// AssignmentConfig configures the interactive claim phase.
type AssignmentConfig struct {
	// Timeout stops waiting for claims after this long, as a Go
	// duration string. "0" or empty waits until every seat is claimed.
	// Default: 0
	Timeout string `yaml:"timeout"`

	// GrabKeyboards opens keyboards with an exclusive grab so function
	// key presses during assignment do not reach the running session.
	// Default: true
	GrabKeyboards bool `yaml:"grab_keyboards"`
}

// Default returns the built-in configuration. A loaded file overrides
// only the fields it sets.
func Default() *Config {
	return &Config{
		Seats: SeatsConfig{
			MaxSeats:   10,
			SeatPrefix: "seat-",
		},
		Topology: TopologyConfig{
			HubTag:           "seat",
			RootHubVendor:    "1d6b",
			MaxAncestryDepth: 32,
		},
		Paths: PathsConfig{
			XorgConfigDir: "/etc/X11/xorg.conf.d",
		},
		Display: DisplayConfig{
			UnitTemplate: "multiseat-xorg@.service",
		},
		Assignment: AssignmentConfig{
			Timeout:       "0",
			GrabKeyboards: true,
		},
		LogLevel: "info",
	}
}

// Load loads configuration from the file named by MULTISEAT_CONFIG,
// or returns [Default] when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, on top of
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.XorgConfigDir = expandVars(c.Paths.XorgConfigDir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var rootHubVendorPattern = regexp.MustCompile(`^[0-9a-f]{4}$`)

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Seats.MaxSeats < 0 || c.Seats.MaxSeats > MaxSeatsLimit {
		errs = append(errs, fmt.Errorf("seats.max_seats must be between 0 and %d, got %d", MaxSeatsLimit, c.Seats.MaxSeats))
	}
	if c.Seats.SeatPrefix == "" {
		errs = append(errs, fmt.Errorf("seats.seat_prefix is required"))
	}
	if strings.ContainsAny(c.Seats.SeatPrefix, "/ \t\n") {
		errs = append(errs, fmt.Errorf("seats.seat_prefix %q must not contain '/' or whitespace", c.Seats.SeatPrefix))
	}

	if c.Topology.HubTag == "" {
		errs = append(errs, fmt.Errorf("topology.hub_tag is required"))
	}
	if !rootHubVendorPattern.MatchString(c.Topology.RootHubVendor) {
		errs = append(errs, fmt.Errorf("topology.root_hub_vendor must be four lowercase hex digits, got %q", c.Topology.RootHubVendor))
	}
	if c.Topology.MaxAncestryDepth < 1 {
		errs = append(errs, fmt.Errorf("topology.max_ancestry_depth must be positive, got %d", c.Topology.MaxAncestryDepth))
	}

	if c.Paths.XorgConfigDir == "" {
		errs = append(errs, fmt.Errorf("paths.xorg_config_dir is required"))
	}

	if !strings.Contains(c.Display.UnitTemplate, "@") || !strings.HasSuffix(c.Display.UnitTemplate, ".service") {
		errs = append(errs, fmt.Errorf("display.unit_template must be a template service like name@.service, got %q", c.Display.UnitTemplate))
	}

	if _, err := c.AssignmentTimeout(); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// AssignmentTimeout parses Assignment.Timeout. Zero means no timeout.
func (c *Config) AssignmentTimeout() (time.Duration, error) {
	if c.Assignment.Timeout == "" || c.Assignment.Timeout == "0" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Assignment.Timeout)
	if err != nil {
		return 0, fmt.Errorf("assignment.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("assignment.timeout must not be negative, got %s", c.Assignment.Timeout)
	}
	return timeout, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// EnsurePaths creates the configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.XorgConfigDir} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// HasSystemd returns true if systemd is the running init system.
func (c *Config) HasSystemd() bool {
	_, err := os.Stat("/run/systemd/system")
	return err == nil
}
