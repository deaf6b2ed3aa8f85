// Package main provides the storyteller binary: the Telnet game server, the
// schema migration runner, save slot administration and an offline character
// sheet calculator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/storyteller/internal/config"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storyteller",
		Short:         "Project Hope narrative RPG server",
		Long:          `storyteller serves the Project Hope narrative RPG over Telnet and manages its saved games.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (defaults and STORYTELLER_* environment when empty)")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newSavesCmd(), newSheetCmd())
	return root
}

// loadConfig reads --config, or builds the configuration from defaults and the
// environment when no file is given.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.LoadFromViper(config.New())
	}
	return config.Load(configPath)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
