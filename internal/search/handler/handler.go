package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tlo-gateway/internal/platform/middleware"
	"tlo-gateway/internal/search/classifier"
	"tlo-gateway/internal/search/models"
	"tlo-gateway/internal/search/upstream"
	"tlo-gateway/pkg/platform/httputil"
	"tlo-gateway/pkg/requestcontext"
)

// Service defines the interface for search operations.
type Service interface {
	Search(ctx context.Context, q models.SearchQuery) (classifier.Result, error)
}

// Handler wires the person-search endpoint to the search service.
type Handler struct {
	service      Service
	sharedSecret string
	logger       *slog.Logger
}

// New constructs a search handler with its dependencies.
func New(service Service, sharedSecret string, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		sharedSecret: sharedSecret,
		logger:       logger,
	}
}

// Register mounts the search endpoints on the router. The health probe
// is unauthenticated; the search route sits behind the shared-secret
// check so rejected callers never reach validation or the upstream.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)

	searchRouter := chi.NewRouter()
	searchRouter.Use(middleware.SharedSecret(h.sharedSecret, h.logger))
	searchRouter.Post("/person-search", h.handleSearch)
	r.Mount("/", searchRouter)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSearch handles POST /person-search requests.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var query models.SearchQuery
	if err := httputil.DecodeJSON(r, &query); err != nil {
		h.logger.WarnContext(ctx, "undecodable search request",
			"request_id", requestID,
		)
		httputil.WriteJSON(w, http.StatusBadRequest, models.SearchFailure{Error: "INVALID_INPUT"})
		return
	}
	if err := query.Validate(); err != nil {
		h.logger.WarnContext(ctx, "invalid search request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusBadRequest, models.SearchFailure{Error: "INVALID_INPUT"})
		return
	}

	result, err := h.service.Search(ctx, query)
	if err != nil {
		if errors.Is(err, upstream.ErrExhausted) {
			h.logger.ErrorContext(ctx, "upstream retries exhausted",
				"request_id", requestID,
				"ssn", query.MaskedSSN(),
			)
			httputil.WriteJSON(w, http.StatusGatewayTimeout, models.SearchFailure{Error: "TLO_TIMEOUT"})
			return
		}
		h.logger.ErrorContext(ctx, "search failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, models.SearchFailure{Error: "INTERNAL"})
		return
	}

	switch result.Kind {
	case classifier.KindSuccess:
		httputil.WriteJSON(w, http.StatusOK, models.SearchSuccess{
			OK:            true,
			TransactionID: result.TransactionID,
			RecordsFound:  result.RecordsFound,
			Data:          result.Payload,
		})
	case classifier.KindUpstreamError:
		// Well-formed negative outcome, not a system fault: 200 with a
		// false success flag.
		httputil.WriteJSON(w, http.StatusOK, models.SearchUpstreamError{
			TLOError:     true,
			ErrorCode:    result.ErrorCode,
			ErrorMessage: result.ErrorMessage,
		})
	case classifier.KindParseFailure:
		httputil.WriteJSON(w, http.StatusBadGateway, models.SearchFailure{
			Error:    "SOAP_PARSE_FAILED",
			RawStart: result.RawPrefix,
		})
	}
}
