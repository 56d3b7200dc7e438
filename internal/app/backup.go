package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgol/updatetd/internal/backup"
	"github.com/bgol/updatetd/internal/output"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Back up the database file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database == "" || cfg.Database == ":memory:" {
			return fmt.Errorf("no database file configured")
		}

		name, err := backup.New(cfg.BackupDir).Create(cfg.Database, "manual")
		if err != nil {
			return err
		}
		fmt.Printf("Created %s\n", name)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List database backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		backups, err := backup.New(cfg.BackupDir).List()
		if err != nil {
			return err
		}

		rows := make([]output.BackupRow, 0, len(backups))
		for _, b := range backups {
			rows = append(rows, output.BackupRow{
				Name:      b.Name,
				CreatedAt: b.CreatedAt,
				SizeBytes: b.SizeBytes,
				Reason:    b.Reason,
			})
		}
		fmt.Print(output.RenderBackupTable(rows))
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore the database file from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database == "" || cfg.Database == ":memory:" {
			return fmt.Errorf("no database file configured")
		}

		if err := backup.New(cfg.BackupDir).Restore(args[0], cfg.Database); err != nil {
			return err
		}
		fmt.Printf("Restored %s to %s\n", args[0], cfg.Database)
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)
	RootCmd.AddCommand(backupCmd)
}
