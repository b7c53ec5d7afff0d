package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/bot"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/menu"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/models"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/telegram"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/users"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot until interrupted.

The bot token is read from TELEGRAM_BOT_TOKEN or the telegram.token key.
The process exits with an error if the browser cannot be launched.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(cmd.Context())
	defer cancel(nil)

	app, err := newPipelineApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	api, err := telegram.Connect(cfg.Telegram.Token, logging.MustLogger("telegram"))
	if err != nil {
		return err
	}
	limit := rate.Inf
	if cfg.Telegram.RateLimit > 0 {
		limit = rate.Limit(cfg.Telegram.RateLimit)
	}
	messenger := telegram.NewMessenger(api, rate.NewLimiter(limit, max(cfg.Telegram.Burst, 1)))

	userStore, err := users.Open(cfg.Users.File)
	if err != nil {
		return err
	}
	app.logger.Infof("%d registered users loaded from %s", userStore.Count(), userStore.Path())

	botLogger := logging.MustLogger("bot")
	cache := models.NewCache(app.pipeline, models.Options{
		FetchTimeout: cfg.Timeouts.Fetch,
		ProgressTTL:  cfg.Progress.TTL,
		Messenger:    messenger,
		Logger:       logging.MustLogger("models"),
	})
	defer cache.Close()

	handler := bot.New(cache, menu.New(cache, messenger, botLogger), userStore, messenger, bot.Options{
		OnFatal: func(err error) { cancel(err) },
		Logger:  botLogger,
	})

	if err := telegram.NewPoller(api, handler, cfg.Telegram.PollTimeout, botLogger).Run(ctx); err != nil {
		return err
	}

	var launch *browser.LaunchError
	if cause := context.Cause(ctx); errors.As(cause, &launch) {
		return fmt.Errorf("stopping: %w", cause)
	}
	app.logger.Infof("shut down")
	return nil
}
