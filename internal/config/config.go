package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "IGPUB_"

// Config holds all runtime options shared by the runners
type Config struct {
	Client  ClientConfig  `yaml:"client" json:"client"`
	Upload  UploadConfig  `yaml:"upload" json:"upload"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ClientConfig controls how the Instagram client presents itself
type ClientConfig struct {
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
	Locale         string        `yaml:"locale" json:"locale"`
	Country        string        `yaml:"country" json:"country"`
	CountryCode    int           `yaml:"country_code" json:"country_code"`
	TimezoneOffset int           `yaml:"timezone_offset" json:"timezone_offset"`
}

// UploadConfig controls media upload behaviour
type UploadConfig struct {
	ConfigurePollInterval time.Duration `yaml:"configure_poll_interval" json:"configure_poll_interval"`
	ConfigureTimeout      time.Duration `yaml:"configure_timeout" json:"configure_timeout"`
	FFmpegPath            string        `yaml:"ffmpeg_path" json:"ffmpeg_path"`
	FFprobePath           string        `yaml:"ffprobe_path" json:"ffprobe_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config with the values the runners use when
// nothing else is configured.
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			Timeout:        30 * time.Second,
			Locale:         "en_US",
			Country:        "US",
			CountryCode:    1,
			TimezoneOffset: -14400,
		},
		Upload: UploadConfig{
			ConfigurePollInterval: 15 * time.Second,
			ConfigureTimeout:      5 * time.Minute,
			FFmpegPath:            "ffmpeg",
			FFprobePath:           "ffprobe",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// LoadFromEnv overrides fields from IGPUB_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", envPrefix, err))
		} else {
			c.Client.Timeout = d
		}
	}
	if v := os.Getenv(envPrefix + "LOCALE"); v != "" {
		c.Client.Locale = v
	}
	if v := os.Getenv(envPrefix + "COUNTRY"); v != "" {
		c.Client.Country = v
	}
	if v := os.Getenv(envPrefix + "COUNTRY_CODE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCOUNTRY_CODE: %w", envPrefix, err))
		} else {
			c.Client.CountryCode = n
		}
	}
	if v := os.Getenv(envPrefix + "TIMEZONE_OFFSET"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEZONE_OFFSET: %w", envPrefix, err))
		} else {
			c.Client.TimezoneOffset = n
		}
	}

	if v := os.Getenv(envPrefix + "CONFIGURE_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCONFIGURE_POLL_INTERVAL: %w", envPrefix, err))
		} else {
			c.Upload.ConfigurePollInterval = d
		}
	}
	if v := os.Getenv(envPrefix + "CONFIGURE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCONFIGURE_TIMEOUT: %w", envPrefix, err))
		} else {
			c.Upload.ConfigureTimeout = d
		}
	}
	if v := os.Getenv(envPrefix + "FFMPEG"); v != "" {
		c.Upload.FFmpegPath = v
	}
	if v := os.Getenv(envPrefix + "FFPROBE"); v != "" {
		c.Upload.FFprobePath = v
	}

	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(envPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file. An empty path
// searches the default locations and is not an error when none exist.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()

	locations := []string{
		".igpub.yaml",
		".igpub.yml",
	}
	if home != "" {
		locations = append(locations,
			filepath.Join(home, ".config", "igpub", "config.yaml"),
			filepath.Join(home, ".config", "igpub", "config.yml"),
		)
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	if c.Client.Timeout <= 0 {
		errs = append(errs, errors.New("client timeout must be positive"))
	}
	if c.Client.Locale == "" {
		errs = append(errs, errors.New("client locale is required"))
	}
	if c.Upload.ConfigurePollInterval <= 0 {
		errs = append(errs, errors.New("configure poll interval must be positive"))
	}
	if c.Upload.ConfigureTimeout <= 0 {
		errs = append(errs, errors.New("configure timeout must be positive"))
	}
	if c.Upload.FFmpegPath == "" || c.Upload.FFprobePath == "" {
		errs = append(errs, errors.New("ffmpeg and ffprobe paths are required"))
	}

	validLevels := map[string]bool{
		"": true, "trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true, "disabled": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Overrides are values taken from command line flags. Zero values leave
// the loaded configuration untouched.
type Overrides struct {
	Debug    bool
	LogLevel string
}

// Apply merges flag overrides into the configuration
func (c *Config) Apply(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.Debug {
		c.Logging.Level = "debug"
	}
}

// Load loads configuration from all sources.
// Precedence: flags > environment > .env file > config file > defaults.
func Load(configPath string, o Overrides) (*Config, error) {
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".igpub.env"))
	}

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.Apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
