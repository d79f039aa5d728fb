package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration. Workers re-read it at the top of
// every polling iteration and aggregation pass, so edits made while the
// tracker is running take effect within one interval.
type Config struct {
	IdleTime              int `yaml:"idle_time"`               // seconds without input before idle
	RetryAttempts         int `yaml:"retry_attempts"`          // bounded retries for store/sampler I/O
	GMTOffset             int `yaml:"gmt_offset"`              // hours added to UTC for day boundaries
	ActivityInterval      int `yaml:"activity_check_interval"` // seconds between window polls
	AdvisorInterval       int `yaml:"advisor_check_interval"`  // seconds between milestone checks
	UnresponsiveThreshold int `yaml:"unresponsive_threshold"`  // seconds of backend silence before alert

	WorkDailyGoal            float64 `yaml:"work_daily_goal"`       // hours
	SmallWorkDailyGoal       float64 `yaml:"small_work_daily_goal"` // hours
	PersonalDailyGoal        float64 `yaml:"personal_daily_goal"`   // hours
	WorkToPersonalMultiplier float64 `yaml:"work_to_personal_multiplier"`

	// WindowCommand is the external command the sampler shells out to.
	// It must print "title<TAB>process<TAB>url[<TAB>fullscreen]".
	WindowCommand string `yaml:"window_command"`

	Categories Categories `yaml:"categories"`
}

// Categories holds the ordered pattern lists used by the categorizer plus
// the app lists that control redaction and fullscreen input detection.
// Patterns are case-insensitive substring-or-regex matches.
type Categories struct {
	WorkApps         []string `yaml:"work_apps"`
	PersonalApps     []string `yaml:"personal_apps"`
	WorkDomains      []string `yaml:"work_domains"`
	PersonalDomains  []string `yaml:"personal_domains"`
	WorkKeywords     []string `yaml:"work_keywords"`
	PersonalKeywords []string `yaml:"personal_keywords"`
	HiddenApps       []string `yaml:"hidden_apps"`
	FullscreenApps   []string `yaml:"fullscreen_apps"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		IdleTime:              180,
		RetryAttempts:         3,
		GMTOffset:             0,
		ActivityInterval:      5,
		AdvisorInterval:       30,
		UnresponsiveThreshold: 60,

		WorkDailyGoal:            4,
		SmallWorkDailyGoal:       1,
		PersonalDailyGoal:        2,
		WorkToPersonalMultiplier: 1,

		WindowCommand: "",

		Categories: Categories{},
	}
}

// Load reads the configuration at path, creating it with defaults when it
// does not exist. A malformed file is an error, never silently replaced:
// empty rule lists would mis-categorize everything as Neutral.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(cfg, path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) validate() error {
	if c.IdleTime <= 0 {
		return fmt.Errorf("idle_time must be positive, got %d", c.IdleTime)
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry_attempts must be positive, got %d", c.RetryAttempts)
	}
	if c.ActivityInterval <= 0 {
		return fmt.Errorf("activity_check_interval must be positive, got %d", c.ActivityInterval)
	}
	if c.AdvisorInterval <= 0 {
		return fmt.Errorf("advisor_check_interval must be positive, got %d", c.AdvisorInterval)
	}
	if c.WorkDailyGoal < 0 || c.SmallWorkDailyGoal < 0 || c.PersonalDailyGoal < 0 {
		return errors.New("daily goals must not be negative")
	}
	if c.WorkToPersonalMultiplier < 0 {
		return errors.New("work_to_personal_multiplier must not be negative")
	}
	return nil
}

// DefaultPath returns ~/.config/vigil/config.yml
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "vigil", "config.yml"), nil
}
