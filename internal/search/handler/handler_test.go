package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"tlo-gateway/internal/search/classifier"
	"tlo-gateway/internal/search/models"
	"tlo-gateway/internal/search/upstream"
	"tlo-gateway/pkg/testutil"
)

const sharedSecret = "internal-secret"

// fakeService returns a canned result and counts invocations so tests
// can assert that rejected requests never reach the pipeline.
type fakeService struct {
	result classifier.Result
	err    error
	calls  int
}

func (s *fakeService) Search(ctx context.Context, q models.SearchQuery) (classifier.Result, error) {
	s.calls++
	if s.err != nil {
		return classifier.Result{}, s.err
	}
	return s.result, nil
}

func newSearchRouter(svc *fakeService, logBuf *bytes.Buffer) http.Handler {
	var logger *slog.Logger
	if logBuf != nil {
		logger = slog.New(slog.NewTextHandler(logBuf, nil))
	} else {
		logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	}
	router := chi.NewRouter()
	New(svc, sharedSecret, logger).Register(router)
	return router
}

func validBody() map[string]string {
	return map[string]string{"firstName": "Ada", "lastName": "Lovelace", "ssn": "123456789"}
}

func TestHealthNoAuth(t *testing.T) {
	router := newSearchRouter(&fakeService{}, nil)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("expected body ok, got %q", rec.Body.String())
	}
}

func TestSearchRejectsMissingSecret(t *testing.T) {
	svc := &fakeService{}
	router := newSearchRouter(svc, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", validBody())
	// No shared-secret header
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"UNAUTHORIZED"`) {
		t.Fatalf("expected UNAUTHORIZED error, got %s", rec.Body.String())
	}
	if svc.calls != 0 {
		t.Fatalf("expected zero upstream calls on auth failure, got %d", svc.calls)
	}
}

func TestSearchRejectsWrongSecret(t *testing.T) {
	svc := &fakeService{}
	router := newSearchRouter(svc, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", validBody())
	req.Header.Set("x-shared-secret", "guess")
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("expected zero upstream calls on auth failure, got %d", svc.calls)
	}
}

func TestSearchRejectsMissingFields(t *testing.T) {
	for _, missing := range []string{"firstName", "lastName", "ssn"} {
		svc := &fakeService{}
		router := newSearchRouter(svc, nil)

		body := validBody()
		delete(body, missing)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", body)
		req.Header.Set("x-shared-secret", sharedSecret)
		rec := testutil.DoRequest(router, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("missing %s: expected 400, got %d", missing, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"INVALID_INPUT"`) {
			t.Fatalf("missing %s: expected INVALID_INPUT, got %s", missing, rec.Body.String())
		}
		if svc.calls != 0 {
			t.Fatalf("missing %s: expected zero upstream calls, got %d", missing, svc.calls)
		}
	}
}

func TestSearchRejectsMalformedBody(t *testing.T) {
	svc := &fakeService{}
	router := newSearchRouter(svc, nil)

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/person-search", "{not json")
	req.Header.Set("x-shared-secret", sharedSecret)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("expected zero upstream calls, got %d", svc.calls)
	}
}

func TestSearchSuccess(t *testing.T) {
	svc := &fakeService{result: classifier.Result{
		Kind:          classifier.KindSuccess,
		TransactionID: "txn-42",
		RecordsFound:  3,
		Payload:       map[string]any{"Records": map[string]any{"Record": "r"}},
	}}
	router := newSearchRouter(svc, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", validBody())
	req.Header.Set("x-shared-secret", sharedSecret)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		OK            bool           `json:"ok"`
		TransactionID string         `json:"transactionId"`
		RecordsFound  int            `json:"recordsFound"`
		Data          map[string]any `json:"data"`
	}
	testutil.DecodeJSONBody(t, rec, &resp)
	if !resp.OK {
		t.Fatalf("expected ok:true")
	}
	if resp.TransactionID != "txn-42" || resp.RecordsFound != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Data == nil {
		t.Fatalf("expected data payload")
	}
}

func TestSearchUpstreamErrorIsNotATransportError(t *testing.T) {
	svc := &fakeService{result: classifier.Result{
		Kind:         classifier.KindUpstreamError,
		ErrorCode:    "12",
		ErrorMessage: "record not found",
	}}
	router := newSearchRouter(svc, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", validBody())
	req.Header.Set("x-shared-secret", sharedSecret)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("business errors travel over 200, got %d", rec.Code)
	}

	var resp struct {
		OK           bool   `json:"ok"`
		TLOError     bool   `json:"tloError"`
		ErrorCode    string `json:"errorCode"`
		ErrorMessage string `json:"errorMessage"`
	}
	testutil.DecodeJSONBody(t, rec, &resp)
	if resp.OK || !resp.TLOError {
		t.Fatalf("expected ok:false tloError:true, got %+v", resp)
	}
	if resp.ErrorCode != "12" || resp.ErrorMessage != "record not found" {
		t.Fatalf("expected verbatim code and message, got %+v", resp)
	}
}

func TestSearchParseFailure(t *testing.T) {
	svc := &fakeService{result: classifier.Result{
		Kind:      classifier.KindParseFailure,
		RawPrefix: "<html>unexpected",
	}}
	router := newSearchRouter(svc, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", validBody())
	req.Header.Set("x-shared-secret", sharedSecret)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp struct {
		OK       bool   `json:"ok"`
		Error    string `json:"error"`
		RawStart string `json:"rawStart"`
	}
	testutil.DecodeJSONBody(t, rec, &resp)
	if resp.Error != "SOAP_PARSE_FAILED" {
		t.Fatalf("expected SOAP_PARSE_FAILED, got %q", resp.Error)
	}
	if resp.RawStart != "<html>unexpected" {
		t.Fatalf("expected diagnostic prefix, got %q", resp.RawStart)
	}
}

func TestSearchTimeout(t *testing.T) {
	svc := &fakeService{err: fmt.Errorf("%w: i/o timeout", upstream.ErrExhausted)}
	router := newSearchRouter(svc, nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", validBody())
	req.Header.Set("x-shared-secret", sharedSecret)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"TLO_TIMEOUT"`) {
		t.Fatalf("expected TLO_TIMEOUT, got %s", rec.Body.String())
	}
}

func TestNoSecretLeaksInLogsOrResponses(t *testing.T) {
	var logBuf bytes.Buffer
	svc := &fakeService{err: fmt.Errorf("%w: i/o timeout", upstream.ErrExhausted)}
	router := newSearchRouter(svc, &logBuf)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/person-search", validBody())
	req.Header.Set("x-shared-secret", sharedSecret)
	rec := testutil.DoRequest(router, req)

	if strings.Contains(rec.Body.String(), sharedSecret) {
		t.Fatalf("response body leaked the shared secret")
	}
	if strings.Contains(logBuf.String(), sharedSecret) {
		t.Fatalf("logs leaked the shared secret")
	}
	if strings.Contains(logBuf.String(), "123456789") {
		t.Fatalf("logs leaked the full SSN")
	}
}
