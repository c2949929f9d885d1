package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/ber2minsin/intime/internal/config"
	"github.com/ber2minsin/intime/internal/daemon"
	"github.com/ber2minsin/intime/internal/database"
	"github.com/ber2minsin/intime/internal/ingest"
	"github.com/ber2minsin/intime/internal/logging"
	"github.com/ber2minsin/intime/internal/processor"
	"github.com/ber2minsin/intime/internal/registry"
	"github.com/ber2minsin/intime/internal/web"
	"github.com/ber2minsin/intime/pkg/adapter"
)

// daemonChildEnv marks the re-executed child so it runs the collector
// instead of forking again.
const daemonChildEnv = "INTIME_DAEMON_CHILD"

// runCollector wires the full pipeline and blocks until a shutdown
// signal arrives or the processor dies: database, window adapter,
// ingestion queue, event processor, and optionally the web server.
func runCollector(cfg *config.Config, withWeb bool) error {
	if os.Getenv(daemonChildEnv) == "1" && cfg.Daemon.LogFile != "" {
		if err := logging.InitFile(cfg.Log.Level, cfg.Daemon.LogFile); err != nil {
			return errors.Wrap(err, "failed to open daemon log file")
		}
	} else {
		logging.Init(cfg.Log.Level, cfg.Log.Pretty)
	}
	log := logging.WithComponent("main")

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}

	ad, err := adapter.New(cfg.Adapter.PollInterval)
	if err != nil {
		return errors.Wrap(err, "failed to initialize window adapter")
	}
	defer ad.Close()
	log.Info().Str("session", adapter.DetectDisplayServer()).Msg("window adapter initialized")

	dm := daemon.New(cfg.Daemon.PIDFile)
	if err := dm.Acquire(); err != nil {
		return err
	}
	defer dm.RemovePID()

	repo := database.NewRepository(db)
	reg := registry.New(repo)
	queue := ingest.New(cfg.Capture.QueueSize)
	proc := processor.New(cfg, repo, reg, ad, queue)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var server *web.Server
	if withWeb {
		server = web.NewServer(cfg, repo, proc, 0)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("web server error")
			}
		}()
		log.Info().Str("addr", server.Address()).Msg("web API available")
	}

	procErr := make(chan error, 1)
	go func() {
		procErr <- proc.Run(ctx)
	}()

	sub, err := ad.Watch(queue)
	if err != nil {
		cancel()
		<-procErr
		return errors.Wrap(err, "failed to start focus watch")
	}

	log.Info().
		Str("db", cfg.Database.Path).
		Dur("capture_interval", cfg.Capture.Interval).
		Msg("collector running")

	var runErr error
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case runErr = <-procErr:
		log.Error().Err(runErr).Msg("processor exited unexpectedly")
	}

	sub.Stop()
	queue.Close()
	cancel()

	if runErr == nil {
		select {
		case runErr = <-procErr:
		case <-time.After(10 * time.Second):
			log.Warn().Msg("processor did not stop in time")
		}
	}

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down web server")
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return errors.Wrap(runErr, "processor error")
	}

	log.Info().Uint64("dropped_notifications", queue.Dropped()).Msg("collector stopped")
	return nil
}

// daemonize re-executes the current command detached from the terminal.
// The child carries an environment marker and runs the collector; the
// parent prints the child PID and returns.
func daemonize(cfg *config.Config, withWeb bool) error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to resolve executable path")
	}

	env := os.Environ()
	env = append(env, daemonChildEnv+"=1")

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil}, // stdin, stdout, stderr to /dev/null
		Sys: &syscall.SysProcAttr{
			Setsid: true, // Create new session
		},
	}

	process, err := os.StartProcess(exe, os.Args, procAttr)
	if err != nil {
		return errors.Wrap(err, "failed to start daemon process")
	}

	fmt.Printf("Collector started (PID: %d)\n", process.Pid)
	if withWeb {
		fmt.Printf("Web API: http://%s\n", cfg.Address())
	}
	if cfg.Daemon.LogFile != "" {
		fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
	}
	return nil
}
