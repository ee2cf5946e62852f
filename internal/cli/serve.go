package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Cer0un0/yaru/internal/config"
	"github.com/Cer0un0/yaru/internal/daemon"
)

// serveCmd is the foreground daemon entry point spawned by the process
// manager. Not meant to be invoked by hand.
var serveCmd = &cobra.Command{
	Use:    "serve",
	Short:  "Run the daemon in the foreground (internal use)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		socketPath, _ := cmd.Flags().GetString("socket")

		if dataDir == "" {
			dataDir = os.Getenv(config.EnvDataDir)
		}
		if socketPath == "" {
			socketPath = os.Getenv(config.EnvSocketPath)
		}

		return daemon.Run(daemon.Options{
			DataDir:    dataDir,
			SocketPath: socketPath,
		})
	},
}

func init() {
	serveCmd.Flags().String("data-dir", "", "Data directory (default: $YARU_DATA_DIR)")
	serveCmd.Flags().String("socket", "", "Socket path (default: $YARU_SOCKET_PATH)")
}
