// Package app wires the command line interface.
package app

import (
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagLogLevel string

	// RootCmd is the root command for updatetd.
	RootCmd = &cobra.Command{
		Use:   "updatetd",
		Short: "Keep a local TradeDangerous database in sync with game telemetry",
		Long: `updatetd watches the game's journal directory and keeps a local
TradeDangerous database updated: system jumps and dockings maintain the
System and Station tables, and market, shipyard and outfitting snapshots
replace the per-station supply, ship and module listings.

Quick Start:
  1. updatetd init ~/data/TradeDangerous.db
  2. export UPDATETD_DATABASE=~/data/TradeDangerous.db
  3. updatetd import          # optional: seed reference data from CSV
  4. updatetd watch --journal "~/Saved Games/Frontier Developments/Elite Dangerous"

Configuration comes from UPDATETD_* environment variables or a .env file;
flags override. See 'updatetd --help' for all commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: $UPDATETD_DATABASE)")
	RootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
