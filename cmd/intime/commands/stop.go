package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ber2minsin/intime/internal/daemon"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running collector",
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return err
	}
	if !running {
		fmt.Println("Collector is not running")
		return nil
	}

	fmt.Printf("Stopping collector (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		return err
	}

	fmt.Println("Collector stopped")
	return nil
}
