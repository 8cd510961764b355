package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dungeonwave",
		Short: "Dungeonwave CLI tool",
		Long: `Dungeonwave is a command-line companion for the dungeonwave server.

Available commands:
  catalog    Validate a catalog directory
  simulate   Play bot matches and report the results
  topics     Explore the event topics the server publishes
  version    Print the version number

Use "dungeonwave [command] --help" for more information about a specific command.`,
		SilenceUsage: true,
	}
	root.AddCommand(newVersionCmd(), newTopicsCmd(), newCatalogCmd(), newSimulateCmd())
	return root
}

// Execute executes the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
