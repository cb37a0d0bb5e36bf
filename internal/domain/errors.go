package domain

import "errors"

var (
	// Validation errors: rejected before any lock, no side effects.
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrWithdrawalTooSmall    = errors.New("amount below minimum withdrawal")
	ErrWithdrawalCapExceeded = errors.New("amount exceeds per-transaction withdrawal limit")
	ErrTransferCapExceeded   = errors.New("amount exceeds single transfer limit")
	ErrInvalidHistoryFilter  = errors.New("unknown history filter")

	// Policy rejections: no committed mutation.
	ErrAccountFrozen     = errors.New("account is frozen")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMinimumBalance    = errors.New("minimum balance must be maintained")
	ErrDailyCapExceeded  = errors.New("daily transfer limit exceeded")
	ErrSelfTransfer      = errors.New("cannot transfer to own account")
	ErrRecipientNotFound = errors.New("recipient account not found")

	// Step-up authentication.
	ErrStepUpRequired       = errors.New("high-value transfer requires a one-time code")
	ErrChallengeInvalid     = errors.New("one-time code is invalid or expired")
	ErrChallengeNotRequired = errors.New("one-time code only required above the step-up threshold")

	// Store failures.
	ErrAccountNotFound = errors.New("account not found")
	ErrBusy            = errors.New("account is busy, retry the operation")
)

// Authentication errors surfaced by the auth middleware.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
