package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kodbank/kodbank/internal/adapter/http/dto"
	"github.com/kodbank/kodbank/internal/adapter/http/middleware"
	"github.com/kodbank/kodbank/internal/usecase"
)

// TransactionService is the slice of the transaction engine the handler
// needs.
type TransactionService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*usecase.TransactionResult, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*usecase.TransactionResult, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransactionResult, error)
	RequestChallenge(ctx context.Context, input usecase.RequestChallengeInput) error
	History(ctx context.Context, input usecase.HistoryInput) (*usecase.HistoryResult, error)
}

// TransactionHandler handles transaction-related HTTP requests. All
// operations act on the authenticated caller's own account.
type TransactionHandler struct {
	service TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// Deposit credits the caller's account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.service.Deposit(r.Context(), req.ToUseCaseInput(caller, r.RemoteAddr))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromResult(result))
}

// Withdraw debits the caller's account.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.service.Withdraw(r.Context(), req.ToUseCaseInput(caller, r.RemoteAddr))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromResult(result))
}

// Transfer moves money from the caller's account to another account.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.service.Transfer(r.Context(), req.ToUseCaseInput(caller, r.RemoteAddr))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromResult(result))
}

// RequestChallenge issues a step-up one-time code for an upcoming
// high-value transfer. The code is delivered out of band; the response
// only acknowledges.
func (h *TransactionHandler) RequestChallenge(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.service.RequestChallenge(r.Context(), req.ToUseCaseInput(caller)); err != nil {
		writeError(w, mapDomainError(err), "failed to issue challenge", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.MessageResponse{Message: "one-time code sent"})
}

// History returns a page of the caller's transaction history.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	result, err := h.service.History(r.Context(), usecase.HistoryInput{
		AccountID: caller.AccountID,
		Filter:    historyFilter(r),
		Page:      parseIntQuery(r, "page", 1),
		PageSize:  parseIntQuery(r, "page_size", usecase.DefaultPageSize),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromResult(result))
}
