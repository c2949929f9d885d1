package commands

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ber2minsin/intime/internal/daemon"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the collector with the web API",
	Long: `Start the collector together with the HTTP server that exposes recorded
focus events, screenshots, and a live event stream.

Like track, serve detaches from the terminal unless --foreground is
given.`,
	Example: `  # Start collector and web API on the default port (8080)
  intime serve

  # Serve on a custom port
  intime serve --port 9090

  # Stay attached with debug logging
  intime serve --foreground --log-level debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Duration("interval", 0, "screenshot capture interval (e.g. 30s)")
	serveCmd.Flags().Int("port", 0, "web server port")
	serveCmd.Flags().Bool("foreground", false, "run attached to the terminal instead of daemonizing")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
		if err := cfg.SetCaptureInterval(interval); err != nil {
			return err
		}
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		if err := cfg.SetWebPort(port); err != nil {
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
		return daemonize(cfg, true)
	}

	return runCollector(cfg, true)
}
