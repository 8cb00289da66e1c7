package upstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyDoer fails transport-level until failures is used up, then
// returns a fixed exchange.
type flakyDoer struct {
	failures int
	calls    int
	exchange Exchange
}

func (d *flakyDoer) Do(ctx context.Context, envelope []byte) (Exchange, error) {
	d.calls++
	if d.calls <= d.failures {
		return Exchange{}, errors.New("connection reset")
	}
	return d.exchange, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRetrierValidatesDeps(t *testing.T) {
	_, err := NewRetrier(nil, 2, discardLogger(), nil)
	assert.Error(t, err)

	_, err = NewRetrier(&flakyDoer{}, -1, discardLogger(), nil)
	assert.Error(t, err)

	_, err = NewRetrier(&flakyDoer{}, 2, nil, nil)
	assert.Error(t, err)
}

func TestRetrySucceedsOnThirdAttempt(t *testing.T) {
	doer := &flakyDoer{failures: 2, exchange: Exchange{Status: http.StatusOK, Body: []byte("<ok/>")}}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	retrier, err := NewRetrier(doer, 2, logger, nil)
	require.NoError(t, err)

	ex, err := retrier.Do(context.Background(), []byte("<env/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, ex.Status)
	assert.Equal(t, 3, doer.calls)

	// Exactly two failure entries, one per failed attempt.
	assert.Equal(t, 2, strings.Count(buf.String(), "upstream attempt failed"))
}

func TestRetryExhaustionReturnsErrExhausted(t *testing.T) {
	doer := &flakyDoer{failures: 10}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	retrier, err := NewRetrier(doer, 2, logger, nil)
	require.NoError(t, err)

	_, err = retrier.Do(context.Background(), []byte("<env/>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, doer.calls, "budget of 2 retries means 3 total attempts")
	assert.Equal(t, 3, strings.Count(buf.String(), "upstream attempt failed"))
}

func TestCompletedExchangeIsNeverRetried(t *testing.T) {
	doer := &flakyDoer{failures: 0, exchange: Exchange{Status: http.StatusBadGateway, Body: []byte("garbage")}}
	retrier, err := NewRetrier(doer, 2, discardLogger(), nil)
	require.NoError(t, err)

	ex, err := retrier.Do(context.Background(), []byte("<env/>"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, ex.Status)
	assert.Equal(t, 1, doer.calls, "error statuses are classified downstream, not retried")
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doer := &flakyDoer{failures: 10}
	retrier, err := NewRetrier(doer, 5, discardLogger(), nil)
	require.NoError(t, err)

	_, err = retrier.Do(ctx, []byte("<env/>"))
	require.Error(t, err)
	assert.Equal(t, 1, doer.calls, "cancelled context must stop the retry loop")
}
