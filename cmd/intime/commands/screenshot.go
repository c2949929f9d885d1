package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ber2minsin/intime/internal/database"
)

var (
	screenshotAt  string
	screenshotApp string
	screenshotOut string
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Export the screenshot nearest to a point in time",
	Long: `Find the stored screenshot closest to a point in time and write it to a
PNG file. When two screenshots are equally close the older one wins.`,
	Example: `  # The screenshot closest to now
  intime screenshot

  # Closest to a specific moment
  intime screenshot --at 2025-06-01T14:30:00Z

  # Restrict to one application
  intime screenshot --app firefox --out firefox.png`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)

	screenshotCmd.Flags().StringVar(&screenshotAt, "at", "", "point in time in RFC 3339 form (default now)")
	screenshotCmd.Flags().StringVar(&screenshotApp, "app", "", "only consider screenshots of this application")
	screenshotCmd.Flags().StringVarP(&screenshotOut, "out", "o", "screenshot.png", "output file")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ts := time.Now()
	if screenshotAt != "" {
		ts, err = time.Parse(time.RFC3339, screenshotAt)
		if err != nil {
			return errors.Wrapf(err, "invalid --at value %q", screenshotAt)
		}
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}

	repo := database.NewRepository(db)

	var appID *int64
	if screenshotApp != "" {
		app, err := repo.GetApplicationByName(screenshotApp)
		if err != nil {
			return errors.Wrapf(err, "unknown application %q", screenshotApp)
		}
		appID = &app.ID
	}

	shot, err := repo.NearestScreenshot(ts.Unix(), appID)
	if err != nil {
		return errors.Wrap(err, "failed to query screenshots")
	}
	if shot == nil {
		fmt.Println("No screenshot found")
		return nil
	}

	if err := os.WriteFile(screenshotOut, shot.Image, 0644); err != nil {
		return errors.Wrap(err, "failed to write screenshot")
	}

	fmt.Printf("Wrote %s (captured %s)\n", screenshotOut,
		time.Unix(shot.CreatedAt, 0).Format(time.RFC3339))
	return nil
}
