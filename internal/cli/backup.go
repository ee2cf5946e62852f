package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cer0un0/yaru/internal/config"
	"github.com/Cer0un0/yaru/internal/storage"
)

// Backup and restore act on the files directly rather than through the
// daemon; the store file is only replaced wholesale, so the daemon picks up
// a restored store on its next load.

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the task store to the backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := storage.New(cfg.DataDir).Backup(); err != nil {
			return err
		}
		fmt.Println("Backup created")
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the task store from the backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.New(cfg.DataDir).Restore()
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d tasks from backup\n", len(store.Tasks))
		return nil
	},
}
