// Package config loads and validates tool configuration.
//
// Settings are resolved from three layers, lowest priority first:
// built-in defaults, the YAML config file at
// ~/.config/pai-note-exporter/config.yaml, and PLAUD_* environment
// variables. CLI flags are applied on top by the cli package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default settings.
const (
	DefaultBaseURL           = "https://api.plaud.ai"
	DefaultOutputDir         = "./exports"
	DefaultTrackingFile      = "./pending_summaries.json"
	DefaultLogLevel          = "info"
	DefaultPollInterval      = 5 * time.Second
	DefaultMaxWait           = 10 * time.Minute
	DefaultWorkers           = 3
	DefaultMaxPendingAge     = 24 * time.Hour
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 15
)

// envPrefix is prepended to upper-cased key names for environment lookup.
const envPrefix = "PLAUD_"

// ConfigurationError indicates bad or missing settings. It is fatal:
// the run aborts without retrying.
type ConfigurationError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error (%s): %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Config holds all settings for a run.
type Config struct {
	// Credentials for the Plaud account.
	Email    string `yaml:"email"`
	Password string `yaml:"password"`

	// BaseURL is the API endpoint. Overridable for testing.
	BaseURL string `yaml:"base_url"`

	// OutputDir receives exported artifacts.
	OutputDir string `yaml:"output_dir"`

	// TrackingFile is the pending-generation tracking file.
	TrackingFile string `yaml:"tracking_file"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// PollInterval is the fixed delay between generation status checks.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxWait bounds how long a single recording's generation is awaited.
	MaxWait time.Duration `yaml:"max_wait"`

	// Workers bounds batch concurrency. Kept small to respect the
	// provider's rate limits.
	Workers int `yaml:"workers"`

	// MaxPendingAge is the staleness threshold for tracked jobs.
	MaxPendingAge time.Duration `yaml:"max_pending_age"`

	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		OutputDir:         DefaultOutputDir,
		TrackingFile:      DefaultTrackingFile,
		LogLevel:          DefaultLogLevel,
		PollInterval:      DefaultPollInterval,
		MaxWait:           DefaultMaxWait,
		Workers:           DefaultWorkers,
		MaxPendingAge:     DefaultMaxPendingAge,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
	}
}

// Load resolves configuration from defaults, the config file, and the
// environment. configPath overrides the default file location when
// non-empty; a missing default file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	path := configPath
	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
				return nil, &ConfigurationError{
					Key:    path,
					Reason: fmt.Sprintf("could not parse config file: %v", unmarshalErr),
				}
			}
		case os.IsNotExist(err):
			if configPath != "" {
				return nil, &ConfigurationError{
					Key:    configPath,
					Reason: "config file not found",
				}
			}
		default:
			return nil, &ConfigurationError{
				Key:    path,
				Reason: fmt.Sprintf("could not read config file: %v", err),
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides settings from PLAUD_* environment variables.
func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(envPrefix + key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("EMAIL", &c.Email)
	setString("PASSWORD", &c.Password)
	setString("BASE_URL", &c.BaseURL)
	setString("OUTPUT_DIR", &c.OutputDir)
	setString("TRACKING_FILE", &c.TrackingFile)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_FILE", &c.LogFile)
	setDuration("POLL_INTERVAL", &c.PollInterval)
	setDuration("MAX_WAIT", &c.MaxWait)
	setDuration("MAX_PENDING_AGE", &c.MaxPendingAge)

	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(envPrefix + "REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv(envPrefix + "BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Burst = n
		}
	}
}

// Validate checks that settings are usable. Credentials are checked
// separately by ValidateCredentials; listing against a cached token
// does not need them.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigurationError{
			Key:    "log_level",
			Reason: fmt.Sprintf("invalid level %q (must be debug, info, warn, or error)", c.LogLevel),
		}
	}

	if c.PollInterval <= 0 {
		return &ConfigurationError{Key: "poll_interval", Reason: "must be greater than zero"}
	}
	if c.MaxWait <= 0 {
		return &ConfigurationError{Key: "max_wait", Reason: "must be greater than zero"}
	}
	if c.Workers <= 0 {
		return &ConfigurationError{Key: "workers", Reason: "must be at least 1"}
	}
	if c.RequestsPerSecond <= 0 {
		return &ConfigurationError{Key: "requests_per_second", Reason: "must be greater than zero"}
	}
	if c.Burst <= 0 {
		return &ConfigurationError{Key: "burst", Reason: "must be at least 1"}
	}

	return nil
}

// ValidateCredentials checks that login credentials are present.
func (c *Config) ValidateCredentials() error {
	if c.Email == "" {
		return &ConfigurationError{Key: "email", Reason: "missing (set PLAUD_EMAIL or the email config key)"}
	}
	if c.Password == "" {
		return &ConfigurationError{Key: "password", Reason: "missing (set PLAUD_PASSWORD or the password config key)"}
	}
	return nil
}

// defaultConfigPath returns ~/.config/pai-note-exporter/config.yaml,
// or empty if the home directory cannot be determined.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pai-note-exporter", "config.yaml")
}
