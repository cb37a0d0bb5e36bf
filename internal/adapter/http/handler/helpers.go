package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kodbank/kodbank/internal/adapter/http/dto"
	"github.com/kodbank/kodbank/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrWithdrawalTooSmall),
		errors.Is(err, domain.ErrWithdrawalCapExceeded),
		errors.Is(err, domain.ErrTransferCapExceeded),
		errors.Is(err, domain.ErrInvalidHistoryFilter),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrChallengeNotRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStepUpRequired),
		errors.Is(err, domain.ErrChallengeInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountFrozen),
		errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrMinimumBalance),
		errors.Is(err, domain.ErrDailyCapExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBusy):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// historyFilter reads the filter query parameter, case-insensitively.
func historyFilter(r *http.Request) domain.HistoryFilter {
	return domain.HistoryFilter(strings.ToUpper(r.URL.Query().Get("filter")))
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
