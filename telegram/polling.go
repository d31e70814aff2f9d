package telegram

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// PollingSource is the long-poll update source (§4.A). It tracks a
// monotonically advancing offset internally and only advances it after a
// full batch has been handed off downstream — a crash mid-batch is safe to
// re-fetch, never safe to skip.
type PollingSource struct {
	client Client
	cfg    Config
	logger *slog.Logger

	offset int
}

// NewPollingSource builds a PollingSource driven by client under cfg.
func NewPollingSource(client Client, cfg Config, logger *slog.Logger) *PollingSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingSource{client: client, cfg: cfg, logger: logger}
}

// Updates starts polling and returns a channel of updates in arrival order.
// The channel is closed once ctx is cancelled; an in-flight request is
// aborted promptly and no partial batch is emitted past that point.
func (p *PollingSource) Updates(ctx context.Context) <-chan Update {
	out := make(chan Update)
	go p.run(ctx, out)
	return out
}

func (p *PollingSource) run(ctx context.Context, out chan<- Update) {
	defer close(out)

	base := time.Duration(p.cfg.BackoffBaseMs) * time.Millisecond
	cap := time.Duration(p.cfg.BackoffCapMs) * time.Millisecond
	backoff := base

	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := Execute(ctx, p.client, GetUpdates(GetUpdatesParams{
			Offset:  p.offset,
			Limit:   p.cfg.PollingLimit,
			Timeout: p.cfg.PollingTimeoutSeconds,
		}))
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			var failed *FailedMethodError
			if errors.As(err, &failed) {
				p.logger.Error("getUpdates rejected by the API, stopping poll loop", "error", err)
				return
			}
			var decoding *DecodingError
			if errors.As(err, &decoding) {
				p.logger.Error("getUpdates response could not be decoded, stopping poll loop", "error", err)
				return
			}

			p.logger.Warn("getUpdates transport error, backing off", "error", err, "backoff", backoff)
			if !sleepCtx(ctx, jitter(backoff)) {
				return
			}
			backoff *= 2
			if backoff > cap {
				backoff = cap
			}
			continue
		}

		backoff = base

		if len(updates) == 0 {
			continue
		}

		for _, u := range updates {
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
		p.offset = updates[len(updates)-1].UpdateID + 1
	}
}

// jitter returns a randomized duration in [d/2, d], spreading out retries
// from concurrently-backing-off callers.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	half := int64(d) / 2
	return time.Duration(half) + time.Duration(rand.Int63n(half+1))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
