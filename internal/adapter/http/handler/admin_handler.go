package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kodbank/kodbank/internal/adapter/http/dto"
	"github.com/kodbank/kodbank/internal/adapter/http/middleware"
	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
)

// AdminService is the slice of the admin use case the handler needs.
type AdminService interface {
	Stats(ctx context.Context) (*domain.LedgerStats, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListTransactions(ctx context.Context, limit int) ([]*domain.TransactionDetail, error)
	SetFrozen(ctx context.Context, input usecase.SetFrozenInput) error
	AdjustBalance(ctx context.Context, input usecase.AdjustBalanceInput) error
	Promote(ctx context.Context, input usecase.PromoteInput) error
	AuditTrail(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}

// AdminHandler handles administrative HTTP requests. Role checks happen
// in the router middleware; the handler only carries the caller through
// for the audit trail.
type AdminHandler struct {
	service AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Stats returns ledger-wide aggregates.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromDomain(stats))
}

// ListAccounts lists accounts with pagination.
func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.service.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// ListTransactions returns the most recent transactions across all
// accounts.
func (h *AdminHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)

	details, err := h.service.ListTransactions(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DetailsFromDomain(details))
}

// SetFrozen freezes or unfreezes an account.
func (h *AdminHandler) SetFrozen(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.SetFrozenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err := h.service.SetFrozen(r.Context(), usecase.SetFrozenInput{
		AccountID: accountID,
		Frozen:    req.Frozen,
		ActorID:   caller.AccountID,
		Origin:    r.RemoteAddr,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update frozen flag", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "account updated"})
}

// AdjustBalance sets an account balance directly.
func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err := h.service.AdjustBalance(r.Context(), usecase.AdjustBalanceInput{
		AccountID:  accountID,
		NewBalance: req.Balance,
		ActorID:    caller.AccountID,
		Origin:     r.RemoteAddr,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to adjust balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "balance updated"})
}

// Promote changes an account's role.
func (h *AdminHandler) Promote(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFromContext(r.Context())

	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.PromoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	err := h.service.Promote(r.Context(), usecase.PromoteInput{
		AccountID: accountID,
		Role:      domain.Role(req.Role),
		ActorID:   caller.AccountID,
		Origin:    r.RemoteAddr,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to change role", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "role updated"})
}

// AuditTrail lists audit entries, optionally narrowed to one account.
func (h *AdminHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.AuditTrail(r.Context(), domain.AuditFilter{
		AccountID: r.URL.Query().Get("account_id"),
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load audit trail", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditEntriesFromDomain(entries))
}
