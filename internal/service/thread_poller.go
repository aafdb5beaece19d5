package service

import (
	"context"
	"time"

	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/observability"
)

// DefaultPollInterval is the thread refresh period when none is configured.
const DefaultPollInterval = 3 * time.Second

// ThreadFetcher loads a full thread for a caller.
type ThreadFetcher interface {
	FetchThread(ctx context.Context, session models.Session, thread models.Thread) ([]models.ThreadMessage, error)
}

// ThreadPoller re-fetches a whole thread on a fixed interval while a view is open.
// Every tick delivers a full snapshot, changed or not.
type ThreadPoller struct {
	fetcher  ThreadFetcher
	interval time.Duration
}

func NewThreadPoller(fetcher ThreadFetcher, interval time.Duration) *ThreadPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ThreadPoller{fetcher: fetcher, interval: interval}
}

// Interval returns the refresh period.
func (p *ThreadPoller) Interval() time.Duration {
	return p.interval
}

// Run emits a snapshot immediately, then on every tick and on every nudge, until ctx
// is cancelled or emit fails. A failed first fetch is returned, as is any later
// client error such as lost access. Later server errors are logged and retried on
// the next tick. nudge may be nil.
func (p *ThreadPoller) Run(
	ctx context.Context,
	session models.Session,
	thread models.Thread,
	nudge <-chan struct{},
	emit func([]models.ThreadMessage) error,
) error {
	observability.ActiveThreadPollers.Inc()
	defer observability.ActiveThreadPollers.Dec()

	msgs, err := p.fetch(ctx, session, thread)
	if err != nil {
		return err
	}
	if err := emit(msgs); err != nil {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-nudge:
		}

		msgs, err := p.fetch(ctx, session, thread)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if models.StatusFor(err) < 500 {
				return err
			}
			middleware.Logger.WarnContext(ctx, "thread refresh failed", "thread", thread.String(), "error", err)
			continue
		}
		// The view may have closed while the fetch was in flight; drop the result.
		if ctx.Err() != nil {
			return nil
		}
		if err := emit(msgs); err != nil {
			return err
		}
	}
}

func (p *ThreadPoller) fetch(ctx context.Context, session models.Session, thread models.Thread) ([]models.ThreadMessage, error) {
	start := time.Now()
	defer func() { observability.ThreadPollDuration.Observe(time.Since(start).Seconds()) }()
	return p.fetcher.FetchThread(ctx, session, thread)
}
