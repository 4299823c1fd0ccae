package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the simple-quiz CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simplequiz",
		Short: "simple-quiz - quiz room API server",
		Long: `simple-quiz serves the quiz room HTTP API: anonymous sessions,
two-phase signup with mail confirmation, sign-in, and room management.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
