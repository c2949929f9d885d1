package processor

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/ber2minsin/intime/internal/models"
	"github.com/ber2minsin/intime/pkg/window"
)

// lastCaptures maps window ids to the instant of their most recent
// completed capture attempt, so a window refocused before its interval
// elapses does not get an immediate duplicate capture. Keyed by window
// id, not application id: two windows of one application are tracked
// independently. The map is the only state shared between the processing
// loop and capture tasks; the mutex is held per single read or write,
// never across a wait.
type lastCaptures struct {
	mu sync.Mutex
	m  map[window.ID]time.Time
}

func newLastCaptures() *lastCaptures {
	return &lastCaptures{m: make(map[window.ID]time.Time)}
}

// remaining reports how long until the next capture for id is due.
// Zero means due now; unseen windows are always due.
func (lc *lastCaptures) remaining(id window.ID, interval time.Duration) time.Duration {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	last, ok := lc.m[id]
	if !ok {
		return 0
	}
	elapsed := time.Since(last)
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

func (lc *lastCaptures) mark(id window.ID) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.m[id] = time.Now()
}

// captureTask is one active scheduler instance bound to a single window.
// Cancellation is immediate from the loop's perspective: cancel flips
// the task context and the loop moves on without waiting on done.
type captureTask struct {
	win    window.ID
	cancel context.CancelFunc
	done   chan struct{}
}

// startTask cancels the previous capture task, if any, and starts a new
// one bound to win. Called only from the processing loop, which keeps
// cancel-and-replace atomic with respect to task ownership.
func (p *Processor) startTask(ctx context.Context, appID int64, win window.ID) {
	if p.task != nil {
		p.task.cancel()
	}

	taskCtx, cancel := context.WithCancel(ctx)
	task := &captureTask{win: win, cancel: cancel, done: make(chan struct{})}
	p.task = task

	go p.captureLoop(taskCtx, task, appID)
}

func (p *Processor) stopTask() {
	if p.task != nil {
		p.task.cancel()
		p.task = nil
	}
}

// captureLoop runs until cancelled. Each pass either sleeps exactly the
// time remaining until the window's next capture is due, or performs one
// capture attempt. The attempt instant is recorded whether or not the
// capture produced a frame, so a failing capture retries at the next
// tick instead of spinning.
func (p *Processor) captureLoop(ctx context.Context, task *captureTask, appID int64) {
	defer close(task.done)

	for {
		wait := p.marks.remaining(task.win, p.interval)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			continue
		}

		frame, err := p.captureOnce(ctx, task.win)
		if ctx.Err() != nil {
			// cancelled mid-capture: discard whatever came back
			return
		}
		p.marks.mark(task.win)
		if err != nil {
			p.log.Warn().Err(err).
				Uint64("window", uint64(task.win)).
				Msg("capture failed, retrying next tick")
			continue
		}
		if frame == nil {
			p.log.Warn().
				Uint64("window", uint64(task.win)).
				Msg("capture produced no frame, retrying next tick")
			continue
		}

		p.persistFrame(appID, frame)
	}
}

// captureOnce invokes the blocking capture call on its own goroutine and
// waits on it or on cancellation, whichever comes first. A result that
// arrives after cancellation is dropped by the caller's ctx check; the
// buffered channel lets the capture goroutine finish regardless.
func (p *Processor) captureOnce(ctx context.Context, win window.ID) (*image.RGBA, error) {
	type result struct {
		frame *image.RGBA
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		frame, err := p.capturer.CaptureWindow(win)
		ch <- result{frame: frame, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.frame, res.err
	}
}

func (p *Processor) persistFrame(appID int64, frame *image.RGBA) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		p.log.Error().Err(err).Int64("app_id", appID).Msg("encoding frame failed")
		return
	}

	shot := &models.Screenshot{AppID: appID, Image: buf.Bytes()}
	if err := p.repo.CreateScreenshot(shot); err != nil {
		p.log.Error().Err(err).Int64("app_id", appID).Msg("storing screenshot failed")
	}
}
