package app

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/journal"
	"github.com/bgol/updatetd/internal/output"
)

var replayCmd = &cobra.Command{
	Use:   "replay <journal.log>",
	Short: "Feed an existing journal file through the synchronizer once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, tdb, err := setup()
		if err != nil {
			return err
		}
		defer tdb.Close()

		if err := tdb.FillRareItemCache(cfg.DataDir); err != nil {
			log.Warn("rare item cache not seeded", zap.Error(err))
		}

		spinner := output.NewSpinner("Replaying journal")
		spinner.Start()
		if err := journal.Replay(log, tdb, args[0]); err != nil {
			spinner.Stop()
			return err
		}
		spinner.StopWithMessage("Replay done.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(replayCmd)
}
