package main

import (
	"fmt"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the model list once and print it as YAML",
	Long: `Run the browser pipeline once and print the harvested catalog.

Use it to check the selectors against the live site without starting the bot.`,
	RunE: runFetch,
}

type fetchOutput struct {
	Target string          `yaml:"target"`
	Models catalog.Catalog `yaml:"models"`
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	app, err := newPipelineApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	cat, err := app.pipeline.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(fetchOutput{Target: cfg.Target.URL, Models: cat})
}
