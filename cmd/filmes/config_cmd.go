package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/filmes/internal/config"
)

// newConfigCmd returns the "config" subcommand group for configuration management.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

// newConfigValidateCmd returns the "config validate" subcommand that checks config file validity.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			printConfigSummary(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

// printConfigSummary prints the effective settings without secrets.
func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, styleSuccess.Render("✓ Configuration is valid"))

	auth := "api key"
	if cfg.TMDb.AccessToken != "" {
		auth = "access token"
	}
	bot := "disabled"
	if cfg.Telegram != nil {
		bot = fmt.Sprintf("enabled (%d allowed users)", len(cfg.Telegram.AllowedUserIDs))
		if len(cfg.Telegram.AllowedUserIDs) == 0 {
			bot = "enabled (all users)"
		}
	}

	rows := [][2]string{
		{"TMDb", sanitizeURL(cfg.TMDb.BaseURL)},
		{"Auth", auth},
		{"Language", cfg.TMDb.Language},
		{"Timeout", cfg.TMDb.TimeoutDuration().String()},
		{"Port", fmt.Sprint(cfg.Server.Port)},
		{"Telegram", bot},
		{"Log level", cfg.App.LogLevel},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %s\n", styleDim.Render(fmt.Sprintf("%-10s", r[0])), r[1])
	}
}
