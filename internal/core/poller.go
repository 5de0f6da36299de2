package core

import (
	"context"
	"sync"
	"time"

	"github.com/rxbench/pbmctl/pkg/models"
)

// FallbackErrorMessage is surfaced when the analysis fails without a
// server-provided message.
const FallbackErrorMessage = "Analysis failed. Please try uploading your contract again."

// StatusFetcher fetches the remote status of one analysis session.
// *integration.AnalyzerClient satisfies it.
type StatusFetcher interface {
	Status(ctx context.Context, sessionID string) (*models.StatusResponse, error)
}

// Update is one non-terminal progress observation: the raw status message
// and the display percentage estimated from it.
type Update struct {
	Message string
	Percent int
}

// Outcome is the single terminal result of a watch.
type Outcome struct {
	Failed  bool
	Message string // error message when Failed
}

// WatchOptions sets the polling cadence.
type WatchOptions struct {
	// InitialDelay before the first status check.
	InitialDelay time.Duration
	// Interval between the resolution of one poll and the start of the next.
	Interval time.Duration
	// CompletionDelay between the final 100% update and the Outcome, so a
	// consumer can show the bar full before advancing.
	CompletionDelay time.Duration
}

// DefaultWatchOptions returns the cadence used when the config provides none.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		InitialDelay:    time.Second,
		Interval:        2 * time.Second,
		CompletionDelay: 500 * time.Millisecond,
	}
}

// Watch is a handle on one status-polling loop. Polls are strictly
// sequential: a new request is not issued until the previous one resolves
// and the interval has elapsed. A transport failure does not terminate the
// loop; the failed poll is simply skipped and the loop waits for the next
// scheduled check. Exactly one Outcome is delivered, after which both
// channels are closed. Stop cancels the loop: once it returns, no further
// update or outcome is delivered, even if a request was in flight.
type Watch struct {
	updates chan Update
	outcome chan Outcome

	cancel   context.CancelFunc
	stopOnce sync.Once
}

// Updates streams non-terminal progress observations. Slow consumers lose
// intermediate updates rather than stalling the poll loop.
func (w *Watch) Updates() <-chan Update { return w.updates }

// Outcome yields the single terminal result. The channel is closed without a
// value if the watch is stopped first.
func (w *Watch) Outcome() <-chan Outcome { return w.outcome }

// Stop cancels the watch. Safe to call multiple times and after termination.
func (w *Watch) Stop() {
	w.stopOnce.Do(w.cancel)
}

// StartWatch begins polling the session's status until a terminal outcome or
// Stop. An unset delay or interval falls back to DefaultWatchOptions; a zero
// CompletionDelay is honored as-is.
func StartWatch(fetcher StatusFetcher, sessionID string, opts WatchOptions) *Watch {
	def := DefaultWatchOptions()
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = def.InitialDelay
	}
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.CompletionDelay < 0 {
		opts.CompletionDelay = def.CompletionDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watch{
		updates: make(chan Update, 16),
		outcome: make(chan Outcome, 1),
		cancel:  cancel,
	}

	go w.run(ctx, fetcher, sessionID, opts)

	return w
}

func (w *Watch) run(ctx context.Context, fetcher StatusFetcher, sessionID string, opts WatchOptions) {
	defer close(w.updates)
	defer close(w.outcome)

	if !sleepCtx(ctx, opts.InitialDelay) {
		return
	}

	for {
		status, err := fetcher.Status(ctx, sessionID)
		if ctx.Err() != nil {
			return
		}

		if err == nil {
			switch status.Status {
			case models.StatusComplete:
				w.sendUpdate(ctx, Update{Message: status.StatusMessage, Percent: 100})
				if !sleepCtx(ctx, opts.CompletionDelay) {
					return
				}
				w.deliver(ctx, Outcome{})
				return

			case models.StatusError:
				msg := status.ErrorMessage
				if msg == "" {
					msg = FallbackErrorMessage
				}
				w.deliver(ctx, Outcome{Failed: true, Message: msg})
				return

			default:
				w.sendUpdate(ctx, Update{
					Message: status.StatusMessage,
					Percent: EstimateProgress(status.StatusMessage),
				})
			}
		}
		// err != nil: transient transport failure, wait for the next poll.

		if !sleepCtx(ctx, opts.Interval) {
			return
		}
	}
}

// sendUpdate drops the update when the watch is cancelled or the consumer
// has fallen behind; updates are display-only.
func (w *Watch) sendUpdate(ctx context.Context, u Update) {
	if ctx.Err() != nil {
		return
	}
	select {
	case w.updates <- u:
	default:
	}
}

// deliver places the terminal outcome unless the watch was cancelled. The
// outcome channel has capacity one and deliver runs once, so this never blocks.
func (w *Watch) deliver(ctx context.Context, o Outcome) {
	if ctx.Err() != nil {
		return
	}
	w.outcome <- o
}

// sleepCtx waits for d, returning false if the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
