package policy_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/policy"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestLimits_CheckDeposit(t *testing.T) {
	limits := policy.Default()

	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{"positive amount", d(500), nil},
		{"very large amount has no upper bound", d(10_000_000), nil},
		{"zero amount", decimal.Zero, domain.ErrInvalidAmount},
		{"negative amount", d(-5), domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.CheckDeposit(tt.amount)
			if err != tt.wantErr {
				t.Errorf("CheckDeposit(%s) = %v, want %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestLimits_CheckWithdrawal(t *testing.T) {
	limits := policy.Default()

	tests := []struct {
		name    string
		amount  decimal.Decimal
		balance decimal.Decimal
		frozen  bool
		wantErr error
	}{
		{"valid withdrawal", d(100), d(5000), false, nil},
		{"exactly at max", d(50000), d(60000), false, nil},
		{"below minimum", d(99), d(5000), false, domain.ErrWithdrawalTooSmall},
		{"above maximum", d(50001), d(100000), false, domain.ErrWithdrawalCapExceeded},
		{"frozen account", d(100), d(5000), true, domain.ErrAccountFrozen},
		{"insufficient funds", d(5000), d(4999), false, domain.ErrInsufficientFunds},
		{"entire balance allowed", d(5000), d(5000), false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.CheckWithdrawal(tt.amount, tt.balance, tt.frozen)
			if err != tt.wantErr {
				t.Errorf("CheckWithdrawal(%s, %s, %v) = %v, want %v", tt.amount, tt.balance, tt.frozen, err, tt.wantErr)
			}
		})
	}
}

func TestLimits_CheckTransfer(t *testing.T) {
	limits := policy.Default()

	tests := []struct {
		name       string
		amount     decimal.Decimal
		balance    decimal.Decimal
		frozen     bool
		dailyTotal decimal.Decimal
		wantErr    error
	}{
		{"valid transfer", d(3000), d(5000), false, decimal.Zero, nil},
		{"zero amount", decimal.Zero, d(5000), false, decimal.Zero, domain.ErrInvalidAmount},
		{"above single cap", d(20001), d(100000), false, decimal.Zero, domain.ErrTransferCapExceeded},
		{"exactly at single cap", d(20000), d(100000), false, decimal.Zero, nil},
		{"frozen sender", d(500), d(5000), true, decimal.Zero, domain.ErrAccountFrozen},
		{"breaks minimum balance floor", d(4001), d(5000), false, decimal.Zero, domain.ErrMinimumBalance},
		{"leaves exactly the floor", d(4000), d(5000), false, decimal.Zero, nil},
		{"daily cap exceeded", d(6000), d(100000), false, d(45000), domain.ErrDailyCapExceeded},
		{"exactly fills daily cap", d(5000), d(100000), false, d(45000), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := limits.CheckTransfer(tt.amount, tt.balance, tt.frozen, tt.dailyTotal)
			if err != tt.wantErr {
				t.Errorf("CheckTransfer = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLimits_RequiresStepUp(t *testing.T) {
	limits := policy.Default()

	if limits.RequiresStepUp(d(10000)) {
		t.Error("amount equal to threshold must not require step-up")
	}

	if !limits.RequiresStepUp(d(10001)) {
		t.Error("amount above threshold must require step-up")
	}
}

func TestLimits_RemainingDaily(t *testing.T) {
	limits := policy.Default()

	if got := limits.RemainingDaily(d(48000)); !got.Equal(d(2000)) {
		t.Errorf("RemainingDaily(48000) = %s, want 2000", got)
	}

	if got := limits.RemainingDaily(d(60000)); !got.Equal(decimal.Zero) {
		t.Errorf("RemainingDaily(60000) = %s, want 0", got)
	}
}
