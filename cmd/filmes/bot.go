package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// newBotCmd returns the "bot" subcommand for running only the Telegram bot.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long:  "Start only the Telegram bot, without the web frontend.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			ctx, cfg, logger, err := setup(ctx, os.Stdout)
			if err != nil {
				return err
			}
			if cfg.Telegram == nil {
				return errors.New(
					"telegram configuration is required: set telegram.bot_token in config or FILMES_TELEGRAM_BOT_TOKEN env var",
				)
			}

			frontends, err := buildFrontends(cfg, newCatalog(cfg, logger), frontendSet{bot: true}, logger)
			if err != nil {
				return err
			}
			return runFrontends(ctx, frontends)
		},
	}
}
