package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/filmes/internal/config"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filmes",
		Short: "Browse movies and TV shows from TMDb",
		Long: "Filmes browses The Movie Database: a web frontend, a Telegram bot,\n" +
			"an MCP tool server and quick lookups from the terminal.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newMovieCmd(),
		newTVCmd(),
		newSearchCmd(),
		newRoutesCmd(),
		newConfigCmd(),
		newBotCmd(),
		newMCPServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Filmes v%s\n", version)
		},
	}
}
