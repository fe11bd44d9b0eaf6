package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vadimtrunov/filmes/internal/config"
	"github.com/vadimtrunov/filmes/internal/core"
	"github.com/vadimtrunov/filmes/internal/frontend/telegram"
	"github.com/vadimtrunov/filmes/internal/router"
	"github.com/vadimtrunov/filmes/internal/server"
	"github.com/vadimtrunov/filmes/internal/views"
)

// newServeCmd returns the "serve" subcommand that runs the web frontend and,
// when configured, the Telegram bot.
func newServeCmd() *cobra.Command {
	var noBot bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web frontend",
		Long: "Serve the movie and TV pages over HTTP. When a Telegram bot token is\n" +
			"configured the bot runs alongside the server.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			ctx, cfg, logger, err := setup(ctx, os.Stdout)
			if err != nil {
				return err
			}

			frontends, err := buildFrontends(cfg, newCatalog(cfg, logger), frontendSet{web: true, bot: !noBot}, logger)
			if err != nil {
				return err
			}
			return runFrontends(ctx, frontends)
		},
	}
	cmd.Flags().BoolVar(&noBot, "no-bot", false, "do not start the Telegram bot even if configured")
	return cmd
}

// newPages builds the page router backed by catalog.
func newPages(catalog core.Catalog, logger *slog.Logger) *router.Router {
	return router.New(views.Factories(catalog, logger), logger)
}

// frontendSet selects which frontends to build.
type frontendSet struct {
	web bool
	bot bool // only when telegram is configured
}

// buildFrontends creates the selected frontends over one shared catalog.
func buildFrontends(cfg *config.Config, catalog core.Catalog, set frontendSet, logger *slog.Logger) ([]core.Frontend, error) {
	var frontends []core.Frontend
	if set.web {
		frontends = append(frontends, server.New(cfg.Server.Port, newPages(catalog, logger), logger))
	}

	if set.bot && cfg.Telegram != nil {
		bot, err := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.AllowedUserIDs, catalog, logger)
		if err != nil {
			return nil, err
		}
		frontends = append(frontends, bot)
	}

	if len(frontends) == 0 {
		return nil, errors.New("no frontend to run")
	}
	return frontends, nil
}

// runFrontends runs every frontend until ctx is canceled or one of them fails.
// A failure cancels the others.
func runFrontends(ctx context.Context, frontends []core.Frontend) error {
	logger := config.LoggerFromContext(ctx)
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range frontends {
		g.Go(func() error {
			logger.Info("frontend starting", slog.String("frontend", f.Name()))
			if err := f.Start(ctx); err != nil {
				return fmt.Errorf("%s: %w", f.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
