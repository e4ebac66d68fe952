// Package main implements the wordeck API server: a JSON HTTP service for
// vocabulary decks, mastery-based learning sessions and generated audio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree. Running the binary without a
// subcommand starts the server.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wordeck-api",
		Short:         "Vocabulary flashcard API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newTokenCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}
