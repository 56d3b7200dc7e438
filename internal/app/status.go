package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgol/updatetd/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database connectivity and row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, tdb, err := setup()
		if err != nil {
			return err
		}
		defer tdb.Close()

		if !tdb.IsConnected() {
			fmt.Printf("Not connected (database: %q)\n", cfg.Database)
			return nil
		}

		counts, err := tdb.TableCounts()
		if err != nil {
			return err
		}

		fmt.Printf("Connected to %s\n\n", cfg.Database)
		fmt.Print(output.RenderCountTable(counts))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
