package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"tlo-gateway/pkg/requestcontext"
)

// RequestID assigns a request ID to every inbound request. An incoming
// X-Request-Id header is honored so internal callers can correlate logs
// across services.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
