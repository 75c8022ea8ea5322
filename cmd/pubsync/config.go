package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicomarr/pubsync/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the resolved configuration: the config file path, the contact
email OpenAlex requests will carry, and the data directory.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	outputInfo("Config file: %s", config.Path())

	email := config.Email()
	if email == "" {
		email = "(not set; requests use the common pool)"
	}
	outputInfo("Email:       %s", email)

	outputInfo("Data dir:    %s", mustResolveDataDir())

	if len(cfg.Exclude) > 0 {
		outputInfo("Exclude:     %s", strings.Join(cfg.Exclude, ", "))
	}
	outputInfo("Errata:      included=%t", cfg.IncludeErrata)
	return nil
}
