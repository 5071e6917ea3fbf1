// Package config loads the timeclock configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"Mansoor88-6/timeclock/internal/timecard"
)

type Config struct {
	Env         string   `yaml:"env" env:"TIMECLOCK_ENV" env-default:"local"`
	StoragePath string   `yaml:"storage_path" env:"TIMECLOCK_STORAGE_PATH" env-default:"./data/timeclock.db"`
	Log         Log      `yaml:"log"`
	Timecard    Timecard `yaml:"timecard"`
	Backend     Backend  `yaml:"backend"`
	Server      Server   `yaml:"server"`
	Export      Export   `yaml:"export"`
	Device      Device   `yaml:"device"`
	Retry       Retry    `yaml:"retry"`
}

type Log struct {
	Level  string `yaml:"level" env:"TIMECLOCK_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"TIMECLOCK_LOG_FORMAT" env-default:"console"`
}

// Timecard fixes the calendar and overtime tiers. They are per deployment,
// never per user.
type Timecard struct {
	WeekStart     string  `yaml:"week_start" env:"TIMECLOCK_WEEK_START" env-default:"monday"`
	Timezone      string  `yaml:"timezone" env:"TIMECLOCK_TIMEZONE" env-default:"UTC"`
	RegularHours  float64 `yaml:"regular_hours" env:"TIMECLOCK_REGULAR_HOURS" env-default:"8"`
	OvertimeHours float64 `yaml:"overtime_hours" env:"TIMECLOCK_OVERTIME_HOURS" env-default:"12"`
}

// Backend is the remote approval system. An empty BaseURL keeps submissions
// local to the sqlite store.
type Backend struct {
	BaseURL string `yaml:"base_url" env:"TIMECLOCK_BACKEND_URL"`
	APIKey  string `yaml:"api_key" env:"TIMECLOCK_API_KEY"`
	Timeout int    `yaml:"timeout" env:"TIMECLOCK_BACKEND_TIMEOUT" env-default:"10"` // seconds
}

// Server is the local REST surface. It stays off unless enabled.
type Server struct {
	Enabled bool `yaml:"enabled" env:"TIMECLOCK_SERVER_ENABLED"`
	Port    int  `yaml:"port" env:"TIMECLOCK_SERVER_PORT" env-default:"8080"`
}

type Export struct {
	Dir string `yaml:"dir" env:"TIMECLOCK_EXPORT_DIR" env-default:"./exports"`
}

type Device struct {
	ID   string `yaml:"id" env:"TIMECLOCK_DEVICE_ID"`
	Name string `yaml:"name" env:"TIMECLOCK_DEVICE_NAME"`
}

type Retry struct {
	Schedule string        `yaml:"schedule" env:"TIMECLOCK_RETRY_SCHEDULE" env-default:"@every 1m"`
	MaxAge   time.Duration `yaml:"max_age" env:"TIMECLOCK_RETRY_MAX_AGE" env-default:"168h"`
}

// LoadConfig reads path when it exists and applies environment overrides.
// A .env file in the working directory is loaded first if present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values cleanenv cannot.
func (c *Config) Validate() error {
	if _, err := c.Calendar(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("invalid timecard config: %w", err)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid backend timeout %d", c.Backend.Timeout)
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Calendar builds the week-start and timezone settings for period filtering.
func (c *Config) Calendar() (timecard.Calendar, error) {
	weekStart, err := timecard.ParseWeekday(c.Timecard.WeekStart)
	if err != nil {
		return timecard.Calendar{}, fmt.Errorf("invalid timecard config: %w", err)
	}
	loc, err := time.LoadLocation(c.Timecard.Timezone)
	if err != nil {
		return timecard.Calendar{}, fmt.Errorf("invalid timecard timezone %q: %w", c.Timecard.Timezone, err)
	}
	return timecard.Calendar{WeekStart: weekStart, Location: loc}, nil
}

// Policy builds the overtime tiers.
func (c *Config) Policy() (timecard.Policy, error) {
	return timecard.NewPolicy(c.Timecard.RegularHours, c.Timecard.OvertimeHours)
}

// BackendTimeout returns the backend timeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.Timeout) * time.Second
}
