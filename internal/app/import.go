package app

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bgol/updatetd/internal/backup"
	"github.com/bgol/updatetd/internal/logging"
	"github.com/bgol/updatetd/internal/output"
	"github.com/bgol/updatetd/internal/tradedb"
)

var (
	flagDataDir  string
	flagNoBackup bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import standard Category, Item, Ship and Upgrade values from CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}

		// Back up before the database is opened so the copy sees a clean,
		// checkpointed file.
		if !flagNoBackup && cfg.Database != "" && cfg.Database != ":memory:" {
			if _, err := os.Stat(cfg.Database); err == nil {
				manager := backup.New(cfg.BackupDir)
				name, err := manager.Create(cfg.Database, "before import")
				if err != nil {
					return err
				}
				log.Info("database backed up", zap.String("backup", name))
				if err := manager.Cleanup(cfg.BackupKeep); err != nil {
					log.Warn("backup cleanup failed", zap.Error(err))
				}
			}
		}

		tdb := tradedb.New(log, cfg.Settings())
		defer tdb.Close()

		// Importing reference data always creates what it reads, regardless
		// of the live auto-create settings.
		saved := tdb.Settings()
		tdb.ChangeSettings(tradedb.Settings{
			Path:         saved.Path,
			CreateItem:   true,
			CreateShip:   true,
			CreateModule: true,
		})
		defer tdb.ChangeSettings(saved)

		spinner := output.NewSpinner("Importing reference data")
		spinner.Start()
		if err := tdb.ImportStandardData(cfg.DataDir); err != nil {
			spinner.Stop()
			return err
		}
		spinner.StopWithMessage("Import done.")
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&flagDataDir, "data", "", "CSV data directory (default: $UPDATETD_DATA_DIR)")
	importCmd.Flags().BoolVar(&flagNoBackup, "no-backup", false, "skip the database backup before importing")
	RootCmd.AddCommand(importCmd)
}
