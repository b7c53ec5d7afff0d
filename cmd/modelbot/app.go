package main

import (
	"fmt"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/config"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"github.com/spf13/cobra"
)

// loadConfig loads the configuration and applies the command-line
// overrides, which take precedence over the environment and the file.
func loadConfig(cmd *cobra.Command, requireToken bool) (*config.Config, error) {
	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("target-url") {
		cfg.Target.URL = targetURL
	}
	if flags.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(requireToken); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// pipelineApp is the browser half of the program, shared by serve and fetch.
type pipelineApp struct {
	logger   *logging.Logger
	registry *browser.Registry
	pipeline *catalog.Pipeline
}

func newPipelineApp(cfg *config.Config) (*pipelineApp, error) {
	if cfg.Logging.Dir != "" {
		logging.SetDirectory(cfg.Logging.Dir)
	}
	if err := logging.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}

	logger := logging.MustLogger("modelbot")
	registry := browser.NewRegistry(cfg.SessionOptions(), logging.MustLogger("browser"),
		browser.WithKeepWarm(cfg.Browser.KeepWarm))

	catalogLogger := logging.MustLogger("catalog")
	driver, err := catalog.NewDriver(cfg.DriverOptions(), cfg.Selectors, catalogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create navigation driver: %w", err)
	}
	extractor := catalog.NewExtractor(cfg.Selectors, cfg.Timeouts.Read, cfg.Timeouts.Dismiss, catalogLogger)

	logger.Infof("modelbot v%s, session %s, target %s", version, logging.GetSessionID(), cfg.Target.URL)
	return &pipelineApp{
		logger:   logger,
		registry: registry,
		pipeline: catalog.NewPipeline(registry, driver, extractor, catalogLogger),
	}, nil
}

func (a *pipelineApp) Close() {
	if err := a.registry.Shutdown(); err != nil {
		a.logger.Warnf("browser shutdown: %v", err)
	}
	_ = a.logger.Close()
}
