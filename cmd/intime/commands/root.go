package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ber2minsin/intime/internal/config"
	"github.com/ber2minsin/intime/internal/database"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "intime",
		Short: "intime - local window activity recorder",
		Long: `intime records which application window holds focus on this machine and
keeps periodic screenshots of it, all in a local SQLite database.

Features:
  • Track the focused window via X11
  • Screenshot the focused window on a configurable interval
  • Query focus history and screenshots from the command line
  • REST API and live event stream for integration`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/intime/config.toml)")
	rootCmd.PersistentFlags().String("db", "", "database file path")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: defaults, then the
// config file, then INTIME_* environment variables, then command-line
// flags, in increasing order of precedence.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if viper.IsSet("database.path") {
		if path := viper.GetString("database.path"); path != "" {
			cfg.Database.Path = path
		}
	}
	if viper.IsSet("log.level") {
		if level := viper.GetString("log.level"); level != "" {
			cfg.Log.Level = level
		}
	}

	// Pin the effective database path so status output and the web API
	// report where data actually lives.
	if cfg.Database.Path == "" {
		path, err := database.GetDefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
