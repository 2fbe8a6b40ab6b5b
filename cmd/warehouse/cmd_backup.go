// Package main implements backup CLI commands.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mywarehouse/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the database",
	Long: `Copies the database into the backup directory and prunes old
copies down to the configured retention count.`,
	RunE: runBackup,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List existing backups, newest first",
	RunE:  runBackupList,
}

func init() {
	backupCmd.AddCommand(backupListCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	path, err := backup.Create(cfg.Database.Path, cfg.Backups.Dir)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	logger.Info("Backup created", zap.String("path", path))
	fmt.Printf("Created %s\n", path)

	removed, err := backup.Prune(cfg.Database.Path, cfg.Backups.Dir, cfg.Backups.Keep)
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	if removed > 0 {
		fmt.Printf("Pruned %d old backups\n", removed)
	}
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	backups, err := backup.List(cfg.Database.Path, cfg.Backups.Dir)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("No backups.")
		return nil
	}
	for _, b := range backups {
		fmt.Println(filepath.Base(b))
	}
	return nil
}
