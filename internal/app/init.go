package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgol/updatetd/internal/tradedb"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a new database file with the TradeDangerous schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagDB
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.Database
		}
		if path == "" {
			return fmt.Errorf("no database path given (argument, --db, or $UPDATETD_DATABASE)")
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}

		if err := tradedb.Create(path); err != nil {
			return err
		}
		fmt.Printf("Created %s\n", path)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
