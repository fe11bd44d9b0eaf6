package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/filmes/internal/core"
	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
	"github.com/vadimtrunov/filmes/internal/store"
)

const cardWidth = 72

// media bundles what the lookup and search commands need per media type.
type media struct {
	name   string // subcommand name
	label  string // human label
	fetch  func(ctx context.Context, catalog core.Catalog, id string, logger *slog.Logger) (tmdb.Record, error)
	search func(ctx context.Context, catalog core.Catalog, query string, logger *slog.Logger) ([]tmdb.Record, error)
}

var (
	movieMedia = media{
		name:  "movie",
		label: "Filmes",
		fetch: func(ctx context.Context, catalog core.Catalog, id string, logger *slog.Logger) (tmdb.Record, error) {
			s := store.NewMovieStore(catalog, logger)
			if err := s.GetMovieDetail(ctx, id); err != nil {
				return tmdb.Record{}, err
			}
			return s.CurrentMovie(), nil
		},
		search: func(ctx context.Context, catalog core.Catalog, query string, logger *slog.Logger) ([]tmdb.Record, error) {
			return store.NewMovieStore(catalog, logger).SearchMovies(ctx, query)
		},
	}
	tvMedia = media{
		name:  "tv",
		label: "Séries",
		fetch: func(ctx context.Context, catalog core.Catalog, id string, logger *slog.Logger) (tmdb.Record, error) {
			s := store.NewTVStore(catalog, logger)
			if err := s.GetTVDetail(ctx, id); err != nil {
				return tmdb.Record{}, err
			}
			return s.CurrentTV(), nil
		},
		search: func(ctx context.Context, catalog core.Catalog, query string, logger *slog.Logger) ([]tmdb.Record, error) {
			return store.NewTVStore(catalog, logger).SearchTVShows(ctx, query)
		},
	}
)

func newMovieCmd() *cobra.Command {
	return newLookupCmd(movieMedia, "Show a movie by TMDb ID", `  filmes movie 550`)
}

func newTVCmd() *cobra.Command {
	return newLookupCmd(tvMedia, "Show a TV show by TMDb ID", `  filmes tv 1399`)
}

func newLookupCmd(m media, short, example string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     m.name + " <id>",
		Short:   short,
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			ctx, cfg, logger, err := setup(ctx, os.Stderr)
			if err != nil {
				return err
			}
			return runLookup(ctx, cmd.OutOrStdout(), newCatalog(cfg, logger), m, args[0], asJSON, logger)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw TMDb record")
	return cmd
}

func runLookup(ctx context.Context, w io.Writer, catalog core.Catalog, m media, id string, asJSON bool, logger *slog.Logger) error {
	rec, err := m.fetch(ctx, catalog, id, logger)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(w, rec)
	}
	fmt.Fprintln(w, renderCard(rec))
	return nil
}

// renderCard formats a detail record for the terminal.
func renderCard(rec tmdb.Record) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(rec.DisplayTitle()))
	if y := rec.Year(); y > 0 {
		b.WriteString(styleDim.Render(fmt.Sprintf(" (%d)", y)))
	}
	b.WriteString(styleDim.Render(fmt.Sprintf("  #%d", rec.ID)))
	b.WriteByte('\n')

	if rec.Tagline != "" {
		b.WriteString(styleDim.Italic(true).Render(rec.Tagline))
		b.WriteByte('\n')
	}

	var facts []string
	if g := rec.GenreNames(); len(g) > 0 {
		facts = append(facts, strings.Join(g, ", "))
	}
	if rec.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%d min", rec.Runtime))
	}
	if rec.NumberOfSeasons > 0 {
		facts = append(facts, fmt.Sprintf("%d temporadas", rec.NumberOfSeasons))
	}
	if rec.Status != "" {
		facts = append(facts, rec.Status)
	}
	if rec.VoteAverage > 0 {
		facts = append(facts, styleRating.Render(fmt.Sprintf("★ %.1f", rec.VoteAverage)))
	}
	if len(facts) > 0 {
		b.WriteString(strings.Join(facts, styleDim.Render(" · ")))
		b.WriteByte('\n')
	}

	if rec.Overview != "" {
		b.WriteByte('\n')
		b.WriteString(lipgloss.NewStyle().Width(cardWidth).Render(rec.Overview))
		b.WriteByte('\n')
	}

	if poster := tmdb.PosterURL(rec.PosterPath, "original"); poster != "" {
		b.WriteString(styleInfo.Render(poster))
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

// printJSON writes v followed by a newline. Records marshal to their raw body.
func printJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
