package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/journal"
)

var flagJournalDir string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the journal directory and synchronize continuously",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, tdb, err := setup()
		if err != nil {
			return err
		}
		defer tdb.Close()

		if flagJournalDir != "" {
			cfg.JournalDir = flagJournalDir
		}

		if err := tdb.FillRareItemCache(cfg.DataDir); err != nil {
			log.Warn("rare item cache not seeded", zap.Error(err))
		}

		w, err := journal.New(log, tdb, cfg.JournalDir)
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("shutting down")
		return w.Stop()
	},
}

func init() {
	watchCmd.Flags().StringVar(&flagJournalDir, "journal", "", "journal directory (default: $UPDATETD_JOURNAL_DIR)")
	RootCmd.AddCommand(watchCmd)
}
