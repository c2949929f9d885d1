package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ber2minsin/intime/internal/config"
	"github.com/ber2minsin/intime/internal/database"
	"github.com/ber2minsin/intime/internal/ingest"
	"github.com/ber2minsin/intime/internal/logging"
	"github.com/ber2minsin/intime/internal/models"
	"github.com/ber2minsin/intime/internal/registry"
	"github.com/ber2minsin/intime/pkg/window"

	"github.com/rs/zerolog"
)

// The synthetic closing event is owned by a fallback application so the
// last session stays bounded even when no real window was ever focused.
const (
	systemAppName = "System"
	systemAppPath = "system://application"
	closingTitle  = "Application Closing"
)

// Processor is the sole consumer of adapter notifications. It serializes
// all mutation of tracking state (current window, active capture task)
// on one goroutine, resolves applications through the registry, appends
// focus events, and swaps the capture task on every focus change. No
// failure while handling a single notification terminates the loop.
type Processor struct {
	config   *config.Config
	repo     *database.Repository
	registry *registry.Registry
	capturer window.Capturer
	queue    *ingest.Queue
	interval time.Duration
	log      zerolog.Logger

	// state below is owned by Run's goroutine
	current    window.ID
	hasCurrent bool
	task       *captureTask
	marks      *lastCaptures
	running    bool

	listenersMu sync.RWMutex
	listeners   []chan models.EventRecord
}

func New(cfg *config.Config, repo *database.Repository, reg *registry.Registry, capturer window.Capturer, queue *ingest.Queue) *Processor {
	return &Processor{
		config:   cfg,
		repo:     repo,
		registry: reg,
		capturer: capturer,
		queue:    queue,
		interval: cfg.Capture.Interval,
		marks:    newLastCaptures(),
		log:      *logging.WithComponent("processor"),
	}
}

// Run consumes notifications until ctx is cancelled. On the way out it
// cancels the active capture task and appends the synthetic closing
// event that bounds the final session.
func (p *Processor) Run(ctx context.Context) error {
	if p.running {
		return fmt.Errorf("processor is already running")
	}
	p.running = true
	p.log.Info().Dur("capture_interval", p.interval).Msg("window event processor started")

	defer func() {
		p.stopTask()
		p.recordClosing()
		p.running = false
		p.log.Info().Msg("window event processor stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-p.queue.Events():
			p.handle(ctx, n)
		}
	}
}

func (p *Processor) handle(ctx context.Context, n window.Notification) {
	switch n.Kind {
	case window.KindForeground:
		p.handleForeground(ctx, n)
	default:
		p.log.Debug().
			Str("kind", n.Kind.String()).
			Str("title", n.Title).
			Msg("dropping unhandled notification")
	}
}

// handleForeground is one full processing cycle: resolve the application,
// append the focus event, and reconcile the capture task when the focused
// window changed. Every failure drops the cycle and keeps the loop alive.
func (p *Processor) handleForeground(ctx context.Context, n window.Notification) {
	app, err := p.registry.Resolve(n.AppName, n.AppPath)
	if err != nil {
		p.log.Error().Err(err).
			Str("app", n.AppName).
			Str("path", n.AppPath).
			Msg("resolving application failed, dropping event")
		return
	}

	event := &models.FocusEvent{
		AppID:       app.ID,
		WindowTitle: n.Title,
		EventKind:   n.Kind.String(),
	}
	if err := p.repo.CreateFocusEvent(event); err != nil {
		p.log.Error().Err(err).
			Str("app", app.Name).
			Msg("recording focus event failed")
	} else {
		p.notifyListeners(models.EventRecord{
			AppID:       app.ID,
			AppName:     app.Name,
			WindowTitle: event.WindowTitle,
			EventKind:   event.EventKind,
			CreatedAt:   event.CreatedAt,
		})
	}

	if !p.hasCurrent || p.current != n.Window {
		p.current = n.Window
		p.hasCurrent = true
		p.log.Debug().
			Uint64("window", uint64(n.Window)).
			Str("app", app.Name).
			Msg("focus changed, restarting capture task")
		p.startTask(ctx, app.ID, n.Window)
	}
}

// recordClosing appends the shutdown marker with an explicit timestamp.
func (p *Processor) recordClosing() {
	app, err := p.registry.Resolve(systemAppName, systemAppPath)
	if err != nil {
		p.log.Error().Err(err).Msg("resolving system application failed, closing event lost")
		return
	}

	event := &models.FocusEvent{
		AppID:       app.ID,
		WindowTitle: closingTitle,
		EventKind:   window.KindClosing.String(),
		CreatedAt:   time.Now().Unix(),
	}
	if err := p.repo.CreateFocusEvent(event); err != nil {
		p.log.Error().Err(err).Msg("recording closing event failed")
		return
	}

	p.notifyListeners(models.EventRecord{
		AppID:       app.ID,
		AppName:     app.Name,
		WindowTitle: event.WindowTitle,
		EventKind:   event.EventKind,
		CreatedAt:   event.CreatedAt,
	})
}

// Subscribe registers a listener for recorded focus events. The returned
// channel is buffered; slow consumers miss events rather than stall the
// loop.
func (p *Processor) Subscribe() chan models.EventRecord {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()

	listener := make(chan models.EventRecord, 16)
	p.listeners = append(p.listeners, listener)
	return listener
}

// Unsubscribe removes and closes a listener channel.
func (p *Processor) Unsubscribe(listener chan models.EventRecord) {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()

	for i, l := range p.listeners {
		if l == listener {
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			close(l)
			break
		}
	}
}

func (p *Processor) notifyListeners(rec models.EventRecord) {
	p.listenersMu.RLock()
	defer p.listenersMu.RUnlock()

	for _, listener := range p.listeners {
		select {
		case listener <- rec:
		default:
		}
	}
}
