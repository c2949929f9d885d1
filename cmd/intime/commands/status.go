package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ber2minsin/intime/internal/daemon"
	"github.com/ber2minsin/intime/internal/database"
	"github.com/ber2minsin/intime/pkg/adapter"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collector status and the latest recorded event",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
	}
	fmt.Printf("Session: %s\n", adapter.DetectDisplayServer())
	fmt.Printf("Capture Interval: %v\n", cfg.Capture.Interval)
	fmt.Printf("Database: %s\n", cfg.Database.Path)

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		fmt.Printf("\nCould not open database: %v\n", err)
		return nil
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		fmt.Printf("\nCould not open database: %v\n", err)
		return nil
	}

	event, err := database.NewRepository(db).LatestEvent()
	if err != nil {
		fmt.Printf("\nCould not read events: %v\n", err)
		return nil
	}
	if event == nil {
		fmt.Println("\nNo events recorded yet")
		return nil
	}

	fmt.Printf("\nLatest Event:\n")
	fmt.Printf("  App: %s\n", event.AppName)
	fmt.Printf("  Title: %s\n", event.WindowTitle)
	fmt.Printf("  Kind: %s\n", event.EventKind)
	fmt.Printf("  At: %s\n", time.Unix(event.CreatedAt, 0).Format(time.RFC3339))
	return nil
}
