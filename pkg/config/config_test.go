package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvToken, EnvTargetURL, EnvHeadless, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Telegram.Token = "123:abc"
	cfg.Target.URL = "https://chat.example.com/"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.KeepWarm)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.Fetch)
	assert.Equal(t, 3*time.Second, cfg.Progress.TTL)
	assert.Equal(t, catalog.DefaultSelectors(), cfg.Selectors)

	assert.Error(t, cfg.Validate(false), "target url has no default")
	assert.NoError(t, validConfig().Validate(true))
}

func TestLoadFileOverDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "modelbot.yaml", `
target:
  url: https://chat.example.com/
browser:
  headless: false
  keep_warm: false
timeouts:
  list: 15s
  fetch: 2m
selectors:
  list_trigger: "#switcher"
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com/", cfg.Target.URL)
	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Browser.KeepWarm)
	assert.Equal(t, 15*time.Second, cfg.Timeouts.List)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Fetch)
	assert.Equal(t, catalog.DefaultNavigationTimeout, cfg.Timeouts.Navigation, "unset keys keep defaults")
	assert.Equal(t, "#switcher", cfg.Selectors.ListTrigger)
	assert.Equal(t, catalog.DefaultSelectors().ListItem, cfg.Selectors.ListItem)
	assert.NoError(t, cfg.Validate(false))
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "modelbot.yaml", "target:\n  url: https://file.example.com/\n")
	t.Setenv(EnvTargetURL, "https://env.example.com/")
	t.Setenv(EnvHeadless, "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/", cfg.Target.URL)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv(EnvToken))
	envFile := writeFile(t, ".env", EnvToken+"=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv(EnvToken) })

	cfg, err := Load("", envFile, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Telegram.Token)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "target: [unclosed"))
	assert.Error(t, err)

	t.Setenv(EnvHeadless, "sometimes")
	_, err = Load("")
	assert.ErrorContains(t, err, EnvHeadless)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		token  bool
		errMsg string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, true, "token"},
		{"token optional", func(c *Config) { c.Telegram.Token = "" }, false, ""},
		{"bad url", func(c *Config) { c.Target.URL = "ftp://x" }, true, "invalid target url"},
		{"bad size", func(c *Config) { c.Browser.Width = 0 }, true, "width"},
		{"negative timeout", func(c *Config) { c.Timeouts.List = -time.Second }, true, "timeouts.list"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true, "logging level"},
		{"empty selector", func(c *Config) { c.Selectors.ListItem = "" }, true, "selectors"},
		{"negative rate", func(c *Config) { c.Telegram.RateLimit = -1 }, true, "rate_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate(tt.token)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestDerivedOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Target.Pattern = "https://chat.example.com/*"

	so := cfg.SessionOptions()
	assert.Equal(t, cfg.Browser.Width, so.Viewport.Width)
	assert.Equal(t, cfg.Browser.Locale, so.Locale)

	do := cfg.DriverOptions()
	assert.Equal(t, cfg.Target.URL, do.TargetURL)
	assert.Equal(t, cfg.Target.Pattern, do.TargetPattern)
	assert.Equal(t, cfg.Timeouts.Consent, do.ConsentTimeout)
}
