package dto

import (
	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
)

// DepositRequest represents a request to deposit into the caller's
// account.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(caller domain.Caller, origin string) usecase.DepositInput {
	return usecase.DepositInput{
		AccountID: caller.AccountID,
		Amount:    r.Amount,
		Origin:    origin,
	}
}

// WithdrawRequest represents a request to withdraw from the caller's
// account.
type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput(caller domain.Caller, origin string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		AccountID: caller.AccountID,
		Amount:    r.Amount,
		Origin:    origin,
	}
}

// TransferRequest represents a request to transfer money. Receiver is the
// receiving account's id or username; OTP is only required above the
// step-up threshold.
type TransferRequest struct {
	Receiver string          `json:"receiver"`
	Amount   decimal.Decimal `json:"amount"`
	OTP      string          `json:"otp,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(caller domain.Caller, origin string) usecase.TransferInput {
	return usecase.TransferInput{
		SenderID: caller.AccountID,
		Receiver: r.Receiver,
		Amount:   r.Amount,
		OTP:      r.OTP,
		Origin:   origin,
	}
}

// ChallengeRequest represents a request for a step-up one-time code ahead
// of a high-value transfer.
type ChallengeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *ChallengeRequest) ToUseCaseInput(caller domain.Caller) usecase.RequestChallengeInput {
	return usecase.RequestChallengeInput{
		AccountID: caller.AccountID,
		Amount:    r.Amount,
	}
}

// SetFrozenRequest represents an administrative freeze or unfreeze.
type SetFrozenRequest struct {
	Frozen bool `json:"frozen"`
}

// AdjustBalanceRequest represents an administrative balance calibration.
type AdjustBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// PromoteRequest represents an administrative role change.
type PromoteRequest struct {
	Role string `json:"role"`
}
