// Package httputil centralizes JSON response writing and request decoding
// so handlers stay focused on orchestration.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "tlo-gateway/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a JSON error envelope.
// Internal errors omit the description so implementation detail never
// reaches callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""
	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
		message = de.Message
	}

	body := map[string]string{"error": string(code)}
	if message != "" && code != dErrors.CodeInternal {
		body["error_description"] = message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// DecodeJSON decodes the request body into dst. Malformed JSON becomes a
// bad-request domain error.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
