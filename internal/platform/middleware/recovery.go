package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"tlo-gateway/pkg/requestcontext"
)

// Recovery converts handler panics into JSON 500 responses so one bad
// request cannot take the process down.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					ctx := r.Context()
					logger.ErrorContext(ctx, "panic in handler",
						"request_id", requestcontext.RequestID(ctx),
						"panic", rec,
						"stack", string(debug.Stack()),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"ok":false,"error":"INTERNAL"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
