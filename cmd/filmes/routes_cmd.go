package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/filmes/internal/router"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes [path]",
		Short: "List the web routes or resolve a path",
		Example: `  filmes routes
  filmes routes /movie/550`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRouteTable()
			if len(args) == 0 {
				printRoutes(cmd.OutOrStdout(), r.Routes())
				return nil
			}
			return printMatch(cmd.OutOrStdout(), r, args[0])
		},
	}
}

// newRouteTable builds a router for inspection only. Resolve never builds
// views, so the factories are never called.
func newRouteTable() *router.Router {
	unused := func() (router.View, error) {
		return nil, errors.New("route table only")
	}
	return router.New(router.Views{
		Home:         unused,
		Movies:       unused,
		MovieDetails: unused,
		TV:           unused,
		TVDetails:    unused,
	}, slog.New(slog.DiscardHandler))
}

func printRoutes(w io.Writer, routes []router.RouteInfo) {
	fmt.Fprintln(w, styleHeader.Render("Routes"))
	for _, rt := range routes {
		props := styleDim.Render("-")
		if len(rt.Props) > 0 {
			props = strings.Join(rt.Props, ", ")
		}
		fmt.Fprintf(w, "  %-18s %-20s %s\n", rt.Path, styleTitle.Render(rt.Name), props)
	}
}

func printMatch(w io.Writer, r *router.Router, path string) error {
	m, ok := r.Resolve(path)
	if !ok {
		return fmt.Errorf("no route matches %q", path)
	}

	fmt.Fprintln(w, styleSuccess.Render(m.Name))
	keys := make([]string, 0, len(m.Props))
	for k := range m.Props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s = %s\n", k, m.Props[k])
	}
	return nil
}
