package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ber2minsin/intime/internal/database"
	"github.com/ber2minsin/intime/internal/models"
)

var (
	eventsSince  time.Duration
	eventsLimit  int
	eventsFormat string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recorded focus events",
	Long: `List focus events recorded in the local database, oldest first.

Each event names the application, the window title it carried at the
time, and the kind of focus transition that produced it.`,
	Example: `  # Events from the last 24 hours
  intime events

  # Events from the last hour, JSON output
  intime events --since 1h --format json

  # At most 10 events
  intime events --limit 10`,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().DurationVar(&eventsSince, "since", 24*time.Hour, "how far back to list events")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 100, "maximum number of events (0 for no limit)")
	eventsCmd.Flags().StringVarP(&eventsFormat, "format", "f", "table", "output format (table or json)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}

	now := time.Now()
	events, err := database.NewRepository(db).EventsInRange(now.Add(-eventsSince).Unix(), now.Unix(), eventsLimit)
	if err != nil {
		return errors.Wrap(err, "failed to query events")
	}
	if events == nil {
		events = []models.EventRecord{}
	}

	switch eventsFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(events)
	case "table":
		return printEventsTable(events)
	default:
		return errors.Errorf("unsupported format: %s (use 'table' or 'json')", eventsFormat)
	}
}

func printEventsTable(events []models.EventRecord) error {
	if len(events) == 0 {
		fmt.Println("No events recorded in this range")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "TIME\tAPP\tKIND\tTITLE")
	fmt.Fprintln(w, "----\t---\t----\t-----")

	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			time.Unix(e.CreatedAt, 0).Format("2006-01-02 15:04:05"),
			e.AppName, e.EventKind, e.WindowTitle)
	}

	return nil
}
