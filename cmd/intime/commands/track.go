package commands

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ber2minsin/intime/internal/daemon"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Start recording window focus activity",
	Long: `Start the collector that records focus events and screenshots of the
currently focused window into the local database.

By default the collector detaches from the terminal and keeps running
until stopped with "intime stop".`,
	Example: `  # Start the collector in the background
  intime track

  # Capture a screenshot every 30 seconds
  intime track --interval 30s

  # Stay attached to the terminal
  intime track --foreground`,
	RunE: runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().Duration("interval", 0, "screenshot capture interval (e.g. 30s)")
	trackCmd.Flags().Bool("foreground", false, "run attached to the terminal instead of daemonizing")
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		if err := cfg.SetCaptureInterval(interval); err != nil {
			return err
		}
	}

	foreground, _ := cmd.Flags().GetBool("foreground")
	if !foreground && os.Getenv(daemonChildEnv) != "1" {
		dm := daemon.New(cfg.Daemon.PIDFile)
		running, pid, err := dm.IsRunning()
		if err != nil {
			return err
		}
		if running {
			return errors.Errorf("collector is already running (pid %d)", pid)
		}
		return daemonize(cfg, false)
	}

	return runCollector(cfg, false)
}
