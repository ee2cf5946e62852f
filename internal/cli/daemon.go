package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cer0un0/yaru/internal/config"
	"github.com/Cer0un0/yaru/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Control the background daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		info, err := daemon.NewManager(cfg).Start()
		if err != nil {
			var de *daemon.Error
			if errors.As(err, &de) && de.Code == daemon.CodeAlreadyRunning {
				fmt.Println(de.Message)
				return nil
			}
			return err
		}
		fmt.Printf("Daemon started (pid %d)\n", info.PID)
		return nil
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := daemon.NewManager(cfg).Stop(); err != nil {
			var de *daemon.Error
			if errors.As(err, &de) && de.Code == daemon.CodeNotRunning {
				fmt.Println("Daemon is not running")
				return nil
			}
			return err
		}
		fmt.Println("Daemon stopped")
		return nil
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		st := daemon.NewManager(cfg).CurrentStatus()
		if !st.Running {
			fmt.Println("Daemon is not running")
			return nil
		}
		fmt.Printf("Daemon is running (pid %d)\n", st.Info.PID)
		fmt.Printf("  Socket:  %s\n", st.Info.SocketPath)
		fmt.Printf("  Started: %s\n", st.Info.StartedAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}
