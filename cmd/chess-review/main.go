package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/park285/Cheese-GameReview/internal/obslog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chess-review",
		Short:         "Review chess games move by move",
		Long:          "chess-review classifies every move of a PGN game against a UCI engine and explains it in plain prose.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := obslog.InitFromEnv(); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = obslog.L().Sync()
		},
	}
	root.AddCommand(newReviewCmd(), newServeCmd(), newOpeningsCmd())
	return root
}
