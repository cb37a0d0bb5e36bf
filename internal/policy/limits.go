// Package policy is the pure evaluator of business limit rules. It holds
// no state and performs no I/O: callers pass the current balance, frozen
// flag and (for transfers) the prior same-day transfer total, and get back
// either nil or a specific rejection reason from the domain error set.
package policy

import (
	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
)

// Limits holds the business thresholds, in whole units of the base
// currency. They are policy constants, not structural: every value is
// overridable through configuration.
type Limits struct {
	MinWithdrawal    decimal.Decimal
	MaxWithdrawal    decimal.Decimal
	MaxTransfer      decimal.Decimal
	DailyTransferCap decimal.Decimal
	MinBalance       decimal.Decimal
	StepUpThreshold  decimal.Decimal
}

// Default returns the stock limit set.
func Default() Limits {
	return Limits{
		MinWithdrawal:    decimal.NewFromInt(100),
		MaxWithdrawal:    decimal.NewFromInt(50000),
		MaxTransfer:      decimal.NewFromInt(20000),
		DailyTransferCap: decimal.NewFromInt(50000),
		MinBalance:       decimal.NewFromInt(1000),
		StepUpThreshold:  decimal.NewFromInt(10000),
	}
}

// CheckDeposit validates a deposit amount. Deposits have no upper bound
// and are accepted on frozen accounts.
func (l Limits) CheckDeposit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}

	return nil
}

// CheckWithdrawalBounds validates only the per-transaction withdrawal
// bounds. Used for cheap rejects before any lock is taken.
func (l Limits) CheckWithdrawalBounds(amount decimal.Decimal) error {
	if amount.LessThan(l.MinWithdrawal) {
		return domain.ErrWithdrawalTooSmall
	}

	if amount.GreaterThan(l.MaxWithdrawal) {
		return domain.ErrWithdrawalCapExceeded
	}

	return nil
}

// CheckWithdrawal validates a withdrawal against the freshly locked
// account state.
func (l Limits) CheckWithdrawal(amount, balance decimal.Decimal, frozen bool) error {
	if err := l.CheckWithdrawalBounds(amount); err != nil {
		return err
	}

	if frozen {
		return domain.ErrAccountFrozen
	}

	if amount.GreaterThan(balance) {
		return domain.ErrInsufficientFunds
	}

	return nil
}

// CheckTransferBounds validates only the per-transaction transfer bounds.
// Used for cheap rejects before OTP verification and locking.
func (l Limits) CheckTransferBounds(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}

	if amount.GreaterThan(l.MaxTransfer) {
		return domain.ErrTransferCapExceeded
	}

	return nil
}

// CheckTransfer validates a transfer against the freshly locked sender
// state and the sender's committed same-day transfer total.
func (l Limits) CheckTransfer(amount, balance decimal.Decimal, frozen bool, dailyTotal decimal.Decimal) error {
	if err := l.CheckTransferBounds(amount); err != nil {
		return err
	}

	if frozen {
		return domain.ErrAccountFrozen
	}

	if dailyTotal.Add(amount).GreaterThan(l.DailyTransferCap) {
		return domain.ErrDailyCapExceeded
	}

	if balance.Sub(amount).LessThan(l.MinBalance) {
		return domain.ErrMinimumBalance
	}

	return nil
}

// RequiresStepUp reports whether a transfer of amount needs a verified
// one-time code.
func (l Limits) RequiresStepUp(amount decimal.Decimal) bool {
	return amount.GreaterThan(l.StepUpThreshold)
}

// RemainingDaily returns the remaining same-day transfer headroom given a
// committed daily total.
func (l Limits) RemainingDaily(dailyTotal decimal.Decimal) decimal.Decimal {
	remaining := l.DailyTransferCap.Sub(dailyTotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}

	return remaining
}
