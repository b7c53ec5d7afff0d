// Package main provides the modelbot command: a Telegram bot that lets users
// browse and pick from the AI models listed on a web application, harvested
// with an automated browser.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	configFile string
	envFile    string
	targetURL  string
	headless   bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "modelbot",
	Short: "Browse and select AI models from Telegram",
	Long: `modelbot drives a browser session against a web application, reads
its list of AI models and offers it as an inline menu in Telegram.

Available commands:
  serve   - Run the Telegram bot
  fetch   - Fetch the model list once and print it as YAML
  version - Print the version`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "modelbot v%s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to configuration file (YAML)")
	flags.StringVar(&envFile, "env-file", ".env", "Path to a .env file, skipped when missing")
	flags.StringVar(&targetURL, "target-url", "", "Page that hosts the model list (overrides config)")
	flags.BoolVar(&headless, "headless", true, "Run the browser without a window (overrides config)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(serveCmd, fetchCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
