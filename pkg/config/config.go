// Package config loads modelbot's configuration from a YAML file, an
// optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvToken     = "TELEGRAM_BOT_TOKEN"
	EnvTargetURL = "MODELBOT_TARGET_URL"
	EnvHeadless  = "MODELBOT_HEADLESS"
	EnvLogLevel  = "MODELBOT_LOG_LEVEL"
)

// Config is the complete runtime configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Target   TargetConfig   `yaml:"target"`
	Browser  BrowserConfig  `yaml:"browser"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Progress ProgressConfig `yaml:"progress"`
	Users    UsersConfig    `yaml:"users"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Selectors override the target site's selectors field by field
	Selectors catalog.Selectors `yaml:"selectors"`
}

// TelegramConfig configures the chat transport.
type TelegramConfig struct {
	Token string `yaml:"token"`

	// PollTimeout is the long-poll timeout in seconds
	PollTimeout int `yaml:"poll_timeout"`

	// RateLimit caps outbound API calls per second; Burst is the bucket size
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// TargetConfig names the page that hosts the model list.
type TargetConfig struct {
	URL string `yaml:"url"`

	// Pattern is a glob for "already on the page"; defaults to URL followed by *
	Pattern string `yaml:"pattern"`
}

// BrowserConfig configures the browser session.
type BrowserConfig struct {
	Headless  bool          `yaml:"headless"`
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	Locale    string        `yaml:"locale"`
	Timezone  string        `yaml:"timezone"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`

	// KeepWarm leaves the session open after a failed fetch
	KeepWarm bool `yaml:"keep_warm"`
}

// TimeoutConfig bounds each step of a fetch.
type TimeoutConfig struct {
	Navigation time.Duration `yaml:"navigation"`
	Settle     time.Duration `yaml:"settle"`
	Consent    time.Duration `yaml:"consent"`
	Trigger    time.Duration `yaml:"trigger"`
	List       time.Duration `yaml:"list"`
	Read       time.Duration `yaml:"read"`
	Dismiss    time.Duration `yaml:"dismiss"`

	// Fetch bounds how long a user waits for a whole fetch
	Fetch time.Duration `yaml:"fetch"`
}

// ProgressConfig configures the fetch progress message.
type ProgressConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// UsersConfig locates the user registration file.
type UsersConfig struct {
	File string `yaml:"file"`
}

// LoggingConfig configures the component loggers.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// Dir overrides the log directory (default ~/.modelbot/logs)
	Dir string `yaml:"dir"`
}

// DefaultConfig returns a configuration suitable for most deployments. The
// target URL and the bot token have no default.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 60,
			RateLimit:   20,
			Burst:       5,
		},
		Browser: BrowserConfig{
			Headless:  true,
			Width:     browser.DefaultViewportWidth,
			Height:    browser.DefaultViewportHeight,
			Locale:    browser.DefaultLocale,
			Timezone:  browser.DefaultTimezone,
			UserAgent: browser.DefaultUserAgent,
			Timeout:   browser.DefaultTimeout,
			KeepWarm:  true,
		},
		Timeouts: TimeoutConfig{
			Navigation: catalog.DefaultNavigationTimeout,
			Settle:     catalog.DefaultSettleDelay,
			Consent:    catalog.DefaultConsentTimeout,
			Trigger:    catalog.DefaultTriggerTimeout,
			List:       catalog.DefaultListTimeout,
			Read:       catalog.DefaultReadTimeout,
			Dismiss:    catalog.DefaultDismissTimeout,
			Fetch:      models.DefaultFetchTimeout,
		},
		Progress: ProgressConfig{
			TTL: models.DefaultProgressTTL,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Selectors: catalog.DefaultSelectors(),
	}
}

// Load reads the YAML file at path over the defaults, then applies .env
// files and environment overrides. An empty path skips the file.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads the given .env files without overriding variables that
// are already set. Missing files are skipped.
func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvToken); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv(EnvTargetURL); v != "" {
		c.Target.URL = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		c.Browser.Headless = headless
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration. requireToken is false for commands
// that never talk to Telegram.
func (c *Config) Validate(requireToken bool) error {
	if requireToken && c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (set %s)", EnvToken)
	}
	if c.Target.URL == "" {
		return fmt.Errorf("target url is required (set %s)", EnvTargetURL)
	}
	u, err := url.Parse(c.Target.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid target url: %s", c.Target.URL)
	}

	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser width and height must be positive")
	}
	if c.Telegram.RateLimit < 0 || c.Telegram.Burst < 0 {
		return fmt.Errorf("rate_limit and burst cannot be negative")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"browser.timeout", c.Browser.Timeout},
		{"timeouts.navigation", c.Timeouts.Navigation},
		{"timeouts.settle", c.Timeouts.Settle},
		{"timeouts.consent", c.Timeouts.Consent},
		{"timeouts.trigger", c.Timeouts.Trigger},
		{"timeouts.list", c.Timeouts.List},
		{"timeouts.read", c.Timeouts.Read},
		{"timeouts.dismiss", c.Timeouts.Dismiss},
		{"timeouts.fetch", c.Timeouts.Fetch},
		{"progress.ttl", c.Progress.TTL},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s cannot be negative", d.name)
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be 'debug', 'info', 'warn', or 'error')", c.Logging.Level)
	}

	if err := c.Selectors.Validate(); err != nil {
		return fmt.Errorf("invalid selectors: %w", err)
	}
	return nil
}

// SessionOptions returns the browser session options.
func (c *Config) SessionOptions() browser.SessionOptions {
	return browser.SessionOptions{
		Headless:  c.Browser.Headless,
		Viewport:  &browser.Viewport{Width: c.Browser.Width, Height: c.Browser.Height},
		Locale:    c.Browser.Locale,
		Timezone:  c.Browser.Timezone,
		UserAgent: c.Browser.UserAgent,
		Timeout:   c.Browser.Timeout,
	}
}

// DriverOptions returns the navigation driver options.
func (c *Config) DriverOptions() catalog.DriverOptions {
	return catalog.DriverOptions{
		TargetURL:         c.Target.URL,
		TargetPattern:     c.Target.Pattern,
		NavigationTimeout: c.Timeouts.Navigation,
		SettleDelay:       c.Timeouts.Settle,
		ConsentTimeout:    c.Timeouts.Consent,
		TriggerTimeout:    c.Timeouts.Trigger,
		ListTimeout:       c.Timeouts.List,
	}
}
