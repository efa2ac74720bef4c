package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOKHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuthMiddleware_NoKeyReturns401(t *testing.T) {
	mw := NewAdminAuthMiddleware("secret-key")
	handler := mw(newOKHandler())

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %q, want %q", resp["code"], "UNAUTHORIZED")
	}
}

func TestAdminAuthMiddleware_WrongKeyReturns401(t *testing.T) {
	mw := NewAdminAuthMiddleware("secret-key")
	handler := mw(newOKHandler())

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set(AdminKeyHeader, "wrong-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAdminAuthMiddleware_ValidKeyPassesThrough(t *testing.T) {
	mw := NewAdminAuthMiddleware("secret-key")

	nextCalled := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set(AdminKeyHeader, "secret-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !nextCalled {
		t.Error("next handler was not called for a valid admin key")
	}
}
