package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"tlo-gateway/pkg/requestcontext"
)

// HeaderSharedSecret is the header internal callers use to authenticate.
const HeaderSharedSecret = "x-shared-secret"

// SharedSecret rejects any request whose shared-secret header does not
// match the configured value. A missing header is treated the same as a
// wrong one. Rejected requests never reach validation or the upstream.
func SharedSecret(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(HeaderSharedSecret)
			// Constant-time comparison to prevent timing attacks.
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "shared secret mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"ok":false,"error":"UNAUTHORIZED"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
