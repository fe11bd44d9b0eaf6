package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/filmes/internal/metadata/tmdb"
)

// newSearchCmd returns the "search" command group.
func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search TMDb",
	}
	cmd.AddCommand(
		newSearchKindCmd(movieMedia, "Search movies by title", `  filmes search movie batman`),
		newSearchKindCmd(tvMedia, "Search TV shows by name", `  filmes search tv "the office"`),
	)
	return cmd
}

func newSearchKindCmd(m media, short, example string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     m.name + " <query>",
		Short:   short,
		Example: example,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			ctx, cfg, logger, err := setup(ctx, os.Stderr)
			if err != nil {
				return err
			}

			search := func(ctx context.Context, q string) ([]tmdb.Record, error) {
				return m.search(ctx, newCatalog(cfg, logger), q, logger)
			}
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if !asJSON && isTerminal(out) {
				return runSearchTUI(ctx, out, m.label, query, search)
			}
			return runSearch(ctx, out, m.label, query, asJSON, search)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw results array")
	return cmd
}

type searchFunc func(ctx context.Context, query string) ([]tmdb.Record, error)

// runSearch searches without a spinner, for pipes and --json.
func runSearch(ctx context.Context, w io.Writer, label, query string, asJSON bool, search searchFunc) error {
	results, err := search(ctx, query)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(w, results)
	}
	fmt.Fprintln(w, renderResults(label, query, results))
	return nil
}

// runSearchTUI shows a spinner while the request is in flight.
func runSearchTUI(ctx context.Context, w io.Writer, label, query string, search searchFunc) error {
	p := tea.NewProgram(newSearchModel(ctx, label, query, search), tea.WithOutput(w))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run search: %w", err)
	}

	sm, ok := m.(searchModel)
	if !ok {
		return fmt.Errorf("unexpected model type from tea program")
	}
	return sm.err
}

// renderResults formats a results list for the terminal.
func renderResults(label, query string, results []tmdb.Record) string {
	if len(results) == 0 {
		return styleDim.Render(fmt.Sprintf("Nenhum resultado para %q.", query))
	}

	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("%s: %q", label, query)))
	b.WriteByte('\n')
	for i, rec := range results {
		line := fmt.Sprintf("%s %s",
			styleDim.Render(fmt.Sprintf("%2d.", i+1)),
			styleTitle.Render(rec.DisplayTitle()),
		)
		if y := rec.Year(); y > 0 {
			line += styleDim.Render(fmt.Sprintf(" (%d)", y))
		}
		if rec.VoteAverage > 0 {
			line += "  " + styleRating.Render(fmt.Sprintf("★ %.1f", rec.VoteAverage))
		}
		line += styleDim.Render(fmt.Sprintf("  #%d", rec.ID))
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// searchResultMsg carries the search outcome back to the TUI.
type searchResultMsg struct {
	results []tmdb.Record
	err     error
}

type searchModel struct {
	ctx     context.Context
	label   string
	query   string
	search  searchFunc
	spinner spinner.Model
	results []tmdb.Record
	err     error
	done    bool
}

func newSearchModel(ctx context.Context, label, query string, search searchFunc) searchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return searchModel{
		ctx:     ctx,
		label:   label,
		query:   query,
		search:  search,
		spinner: s,
	}
}

func (m searchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runSearch())
}

func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case searchResultMsg:
		m.results = msg.results
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m searchModel) View() string {
	if m.done {
		if m.err != nil {
			return styleError.Render("Error: "+m.err.Error()) + "\n"
		}
		return renderResults(m.label, m.query, m.results) + "\n"
	}
	return m.spinner.View() + styleDim.Render(fmt.Sprintf(" Buscando %q...", m.query)) + "\n"
}

func (m searchModel) runSearch() tea.Cmd {
	return func() tea.Msg {
		results, err := m.search(m.ctx, m.query)
		return searchResultMsg{results: results, err: err}
	}
}

