package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/kodbank/kodbank/internal/adapter/http/middleware"
	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/infrastructure/auth"
	"github.com/kodbank/kodbank/internal/infrastructure/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate("acc-1", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var caller domain.Caller
	handler := middleware.AuthMiddleware(jwtManager, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ = middleware.CallerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if caller.AccountID != "acc-1" || caller.Role != domain.RoleCustomer {
		t.Fatalf("unexpected caller: %+v", caller)
	}
}

func TestAuthMiddleware_RejectsAndCounts(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.NewWith(prometheus.NewRegistry())
	handler := middleware.AuthMiddleware(jwtManager, m)(okHandler())

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"missing header", "", "missing_header"},
		{"not a bearer scheme", "Basic dXNlcjpwYXNz", "malformed_header"},
		{"garbage token", "Bearer not-a-token", "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/history", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), domain.ErrUnauthorized.Error()) {
				t.Fatalf("expected %q in body, got %q", domain.ErrUnauthorized.Error(), rec.Body.String())
			}
			if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues(tt.reason)); got != 1 {
				t.Fatalf("expected 1 failure counted for %s, got %v", tt.reason, got)
			}
		})
	}
}

func TestAuthMiddleware_WrongKeyRejected(t *testing.T) {
	signer := auth.NewJWTManager("other-secret", time.Hour)
	token, err := signer.Generate("acc-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	handler := middleware.AuthMiddleware(jwtManager, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a foreign signature, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := middleware.RequireAdmin(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts/acc-1/freeze", nil)
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{AccountID: "acc-1", Role: domain.RoleCustomer}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a customer, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), domain.ErrInsufficientRole.Error()) {
		t.Fatalf("expected %q in body, got %q", domain.ErrInsufficientRole.Error(), rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts/acc-1/freeze", nil)
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{AccountID: "acc-9", Role: domain.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for an admin, got %d", rec.Code)
	}

	// No caller at all means the auth layer was bypassed.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts/acc-1/freeze", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a caller, got %d", rec.Code)
	}
}

func TestRequireGlobalViewer(t *testing.T) {
	handler := middleware.RequireGlobalViewer(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{AccountID: "acc-2", Role: domain.RoleManager}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a manager, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{AccountID: "acc-1", Role: domain.RoleCustomer}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a customer, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := middleware.NewRecoveryMiddleware(logger).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected application/json, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("panic detail must not leak to the client, got %q", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected the panic in the log, got %q", buf.String())
	}
}
