package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kodbank/kodbank/internal/adapter/http/handler"
	apimiddleware "github.com/kodbank/kodbank/internal/adapter/http/middleware"
	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
)

type statsOnlyAdminService struct {
	handler.AdminService
}

func (s *statsOnlyAdminService) Stats(ctx context.Context) (*domain.LedgerStats, error) {
	return &domain.LedgerStats{}, nil
}

type historyOnlyTransactionService struct {
	handler.TransactionService
}

func (s *historyOnlyTransactionService) History(ctx context.Context, input usecase.HistoryInput) (*usecase.HistoryResult, error) {
	return &usecase.HistoryResult{Page: input.Page, PageSize: input.PageSize}, nil
}

// stubAuth reads the caller role from a test header instead of a JWT.
func stubAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Test-Role")
		if role == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := apimiddleware.WithCaller(r.Context(), domain.Caller{
			AccountID: "acc-1",
			Role:      domain.Role(role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newTestRouter() http.Handler {
	return NewRouter(RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(&historyOnlyTransactionService{}),
		AdminHandler:       handler.NewAdminHandler(&statsOnlyAdminService{}),
		HealthHandler:      handler.NewHealthHandler(nil, nil),
		Auth:               stubAuth,
	})
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_APIRequiresAuth(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/history", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}
}

func TestNewRouter_HistoryReachableForCustomer(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/history", nil)
	req.Header.Set("X-Test-Role", string(domain.RoleCustomer))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestNewRouter_AdminStatsGatedByRole(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("X-Test-Role", string(domain.RoleCustomer))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("X-Test-Role", string(domain.RoleManager))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager, got %d", rec.Code)
	}
}

func TestNewRouter_AdminWritesNeedAdminRole(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit", nil)
	req.Header.Set("X-Test-Role", string(domain.RoleManager))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for manager on admin write surface, got %d", rec.Code)
	}
}
