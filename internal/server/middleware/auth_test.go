package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authStatus(key string, mutate func(*http.Request)) int {
	h := Auth(key)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/markets", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthDisabledWhenKeyEmpty(t *testing.T) {
	if code := authStatus("", nil); code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 with auth disabled", code)
	}
}

func TestAuthRejectsMissingAndWrongKeys(t *testing.T) {
	if code := authStatus("s3cret", nil); code != http.StatusUnauthorized {
		t.Errorf("no credentials: status = %d, want 401", code)
	}
	if code := authStatus("s3cret", func(r *http.Request) {
		r.Header.Set("X-API-Key", "wrong")
	}); code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", code)
	}
	if code := authStatus("s3cret", func(r *http.Request) {
		r.Header.Set("Authorization", "Basic s3cret")
	}); code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: status = %d, want 401", code)
	}
}

func TestAuthAcceptsEitherHeader(t *testing.T) {
	if code := authStatus("s3cret", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer s3cret")
	}); code != http.StatusNoContent {
		t.Errorf("bearer token: status = %d, want 204", code)
	}
	if code := authStatus("s3cret", func(r *http.Request) {
		r.Header.Set("X-API-Key", "s3cret")
	}); code != http.StatusNoContent {
		t.Errorf("api key header: status = %d, want 204", code)
	}
}
