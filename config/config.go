// Package config loads server settings from an optional TOML file.
//
// Precedence: command-line flags > config file > Default().
//
// Example vesting.toml:
//
//	port = 8080
//	db_path = "./data/vesting.db"
//	log_level = "info"
//	default_policy = "cumulative_rounding"
//	allowed_origins = ["http://localhost:5173"]
//	read_timeout = "15s"
//	monitor_interval = "1h"
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/warp/vesting-engine/obs"
	"github.com/warp/vesting-engine/vesting"
)

type Config struct {
	Port           int      `toml:"port"`
	DBPath         string   `toml:"db_path"`
	LogLevel       string   `toml:"log_level"`
	DefaultPolicy  string   `toml:"default_policy"`
	AllowedOrigins []string `toml:"allowed_origins"`

	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`

	// MonitorInterval is how often vest events are checked. Zero disables.
	MonitorInterval Duration `toml:"monitor_interval"`
}

// Duration lets TOML strings like "15s" decode into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() Config {
	return Config{
		Port:            8080,
		DBPath:          "vesting.db",
		LogLevel:        "info",
		AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:8080"},
		ReadTimeout:     Duration{15 * time.Second},
		WriteTimeout:    Duration{15 * time.Second},
		ShutdownTimeout: Duration{30 * time.Second},
		MonitorInterval: Duration{time.Hour},
	}
}

// Load reads path over Default(). An empty path returns the defaults; a
// missing file is an error since the caller asked for it explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parsing %s: unknown key %q", path, undecoded[0].String())
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if _, err := obs.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MonitorInterval.Duration < 0 {
		errs = append(errs, errors.New("monitor_interval cannot be negative"))
	}
	if _, err := c.RoundingPolicy(); err != nil {
		errs = append(errs, fmt.Errorf("default_policy: %w", err))
	}
	return errors.Join(errs...)
}

// RoundingPolicy returns the configured default policy, or 0 when unset.
func (c Config) RoundingPolicy() (vesting.RoundingPolicy, error) {
	if c.DefaultPolicy == "" {
		return 0, nil
	}
	return vesting.ParseRoundingPolicy(c.DefaultPolicy)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
