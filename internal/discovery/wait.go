package discovery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/playerctl/internal/page"
)

const (
	DefaultTimeout = 10 * time.Second
	PollInterval   = 300 * time.Millisecond
)

var ErrTimeout = errors.New("video not found within timeout")

// Waiter polls FindActiveVideo until a video shows up or the deadline passes.
type Waiter struct {
	Interval time.Duration
}

func NewWaiter() *Waiter {
	return &Waiter{Interval: PollInterval}
}

// WaitForVideo waits with the default poll interval.
func WaitForVideo(ctx context.Context, doc page.Document, timeout time.Duration) (page.Video, error) {
	return NewWaiter().Wait(ctx, doc, timeout)
}

// Wait checks immediately, then on every tick. The ticker and the deadline
// timer race inside one select, so exactly one of them settles the wait and
// both are stopped before Wait returns. A non-positive timeout still gets
// the first check.
func (w *Waiter) Wait(ctx context.Context, doc page.Document, timeout time.Duration) (page.Video, error) {
	funcName := "discovery.Waiter.Wait"

	interval := w.Interval
	if interval <= 0 {
		interval = PollInterval
	}

	start := time.Now()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.NewTimer(max(timeout, 0))
	defer deadline.Stop()

	for {
		video, err := FindActiveVideo(ctx, doc)
		if err != nil {
			slog.DebugContext(ctx, funcName, "error", err)
		}
		if video != nil {
			return video, nil
		}

		if time.Since(start) >= timeout {
			return nil, ErrTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrTimeout
		case <-ticker.C:
		}
	}
}
