// Package service composes the person-search pipeline: envelope
// construction, the retried upstream call, and response classification.
package service

import (
	"context"
	"errors"
	"log/slog"

	"tlo-gateway/internal/search/classifier"
	"tlo-gateway/internal/search/envelope"
	"tlo-gateway/internal/search/metrics"
	"tlo-gateway/internal/search/models"
	"tlo-gateway/internal/search/upstream"
	"tlo-gateway/pkg/requestcontext"
)

// Caller performs the retried upstream exchange for one envelope.
type Caller interface {
	Do(ctx context.Context, envelope []byte) (upstream.Exchange, error)
}

// Service owns the immutable outbound credentials and drives one search
// end to end. Safe for concurrent use: all state is read-only.
type Service struct {
	caller  Caller
	creds   envelope.Credentials
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs the search service.
func New(caller Caller, creds envelope.Credentials, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if caller == nil {
		return nil, errors.New("upstream caller is required")
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, errors.New("upstream credentials are required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{caller: caller, creds: creds, logger: logger, metrics: m}, nil
}

// Search runs one person search. The returned error is non-nil only for
// transport exhaustion (upstream.ErrExhausted) or context cancellation;
// every completed exchange classifies into the Result, never an error.
func (s *Service) Search(ctx context.Context, q models.SearchQuery) (classifier.Result, error) {
	env := envelope.Build(q, s.creds)

	ex, err := s.caller.Do(ctx, env)
	if err != nil {
		if errors.Is(err, upstream.ErrExhausted) {
			s.metrics.IncrementOutcome("timeout")
		}
		return classifier.Result{}, err
	}

	res := classifier.Classify(ex.Body)
	switch res.Kind {
	case classifier.KindSuccess:
		s.metrics.IncrementOutcome("success")
		s.logger.InfoContext(ctx, "search completed",
			"request_id", requestcontext.RequestID(ctx),
			"transaction_id", res.TransactionID,
			"records_found", res.RecordsFound,
			"http_status", ex.Status,
		)
	case classifier.KindUpstreamError:
		s.metrics.IncrementOutcome("upstream_error")
		s.logger.InfoContext(ctx, "search returned upstream error",
			"request_id", requestcontext.RequestID(ctx),
			"error_code", res.ErrorCode,
			"http_status", ex.Status,
		)
	case classifier.KindParseFailure:
		s.metrics.IncrementOutcome("parse_failure")
		s.logger.ErrorContext(ctx, "unparsable upstream response",
			"request_id", requestcontext.RequestID(ctx),
			"http_status", ex.Status,
			"raw_start", res.RawPrefix,
		)
	}
	return res, nil
}
