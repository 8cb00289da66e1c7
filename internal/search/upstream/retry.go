package upstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tlo-gateway/internal/search/metrics"
	"tlo-gateway/pkg/requestcontext"
)

// ErrExhausted is returned when every attempt in the retry budget failed
// at the transport level.
var ErrExhausted = errors.New("all upstream attempts failed")

// Doer performs a single upstream attempt.
type Doer interface {
	Do(ctx context.Context, envelope []byte) (Exchange, error)
}

// Retrier drives up to maxRetries+1 sequential attempts against the
// transport client. Attempts retry immediately, with no backoff: the
// upstream either answers or it doesn't, and the caller is waiting.
type Retrier struct {
	client     Doer
	maxRetries int
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewRetrier constructs a Retrier. maxRetries is the number of retries
// after the initial attempt; 0 disables retrying.
func NewRetrier(client Doer, maxRetries int, logger *slog.Logger, m *metrics.Metrics) (*Retrier, error) {
	if client == nil {
		return nil, errors.New("transport client is required")
	}
	if maxRetries < 0 {
		return nil, errors.New("max retries must not be negative")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Retrier{client: client, maxRetries: maxRetries, logger: logger, metrics: m}, nil
}

// Do returns the first completed exchange, whatever its HTTP status.
// Only transport-level failures are retried; each one is logged with its
// attempt number before the next attempt or before giving up. Exhaustion
// yields ErrExhausted wrapping the last cause.
func (r *Retrier) Do(ctx context.Context, envelope []byte) (Exchange, error) {
	attempts := r.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		ex, err := r.client.Do(ctx, envelope)
		if err == nil {
			r.metrics.IncrementAttempt("completed")
			r.metrics.ObserveUpstreamLatency(time.Since(start))
			return ex, nil
		}
		lastErr = err
		r.metrics.IncrementAttempt("transport_error")

		r.logger.WarnContext(ctx, "upstream attempt failed",
			"request_id", requestcontext.RequestID(ctx),
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err.Error(),
		)

		if ctx.Err() != nil {
			// Caller is gone; retrying would only burn the budget.
			break
		}
	}

	return Exchange{}, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}
