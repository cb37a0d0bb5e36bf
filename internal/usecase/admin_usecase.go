package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
)

// AdminUseCase handles administrative passthrough writes: simple
// single-statement mutations that do not go through the transaction
// engine's locked path.
type AdminUseCase struct {
	accounts     AccountRepository
	transactions TransactionRepository
	audits       AuditRepository
	logger       zerolog.Logger
}

// NewAdminUseCase creates a new AdminUseCase.
func NewAdminUseCase(
	accounts AccountRepository,
	transactions TransactionRepository,
	audits AuditRepository,
	logger zerolog.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		accounts:     accounts,
		transactions: transactions,
		audits:       audits,
		logger:       logger,
	}
}

// Stats returns ledger-wide aggregates.
func (uc *AdminUseCase) Stats(ctx context.Context) (*domain.LedgerStats, error) {
	return uc.accounts.Stats(ctx)
}

// ListAccounts lists accounts with pagination.
func (uc *AdminUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return uc.accounts.List(ctx, limit, offset)
}

// ListTransactions returns the most recent transactions across all
// accounts.
func (uc *AdminUseCase) ListTransactions(ctx context.Context, limit int) ([]*domain.TransactionDetail, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	return uc.transactions.ListRecent(ctx, limit)
}

// SetFrozenInput represents input for freezing or unfreezing an account.
type SetFrozenInput struct {
	AccountID string
	Frozen    bool
	ActorID   string
	Origin    string
}

// SetFrozen freezes or unfreezes an account. Frozen accounts cannot
// withdraw or send transfers but can still receive deposits.
func (uc *AdminUseCase) SetFrozen(ctx context.Context, input SetFrozenInput) error {
	if err := uc.accounts.SetFrozen(ctx, input.AccountID, input.Frozen); err != nil {
		return err
	}

	verb := "unfroze"
	if input.Frozen {
		verb = "froze"
	}

	uc.recordAction(ctx, input.ActorID, fmt.Sprintf("Admin %s account %s", verb, input.AccountID), input.Origin)

	return nil
}

// AdjustBalanceInput represents input for a balance calibration.
type AdjustBalanceInput struct {
	AccountID  string
	NewBalance decimal.Decimal
	ActorID    string
	Origin     string
}

// AdjustBalance sets an account balance directly.
func (uc *AdminUseCase) AdjustBalance(ctx context.Context, input AdjustBalanceInput) error {
	if input.NewBalance.IsNegative() {
		return domain.ErrInvalidAmount
	}

	if err := uc.accounts.SetBalance(ctx, input.AccountID, input.NewBalance); err != nil {
		return err
	}

	uc.recordAction(ctx, input.ActorID,
		fmt.Sprintf("Admin set balance of %s to %s", input.AccountID, input.NewBalance), input.Origin)

	return nil
}

// PromoteInput represents input for a role promotion.
type PromoteInput struct {
	AccountID string
	Role      domain.Role
	ActorID   string
	Origin    string
}

// Promote changes an account's role.
func (uc *AdminUseCase) Promote(ctx context.Context, input PromoteInput) error {
	if !input.Role.IsValid() {
		return domain.ErrInsufficientRole
	}

	if err := uc.accounts.SetRole(ctx, input.AccountID, input.Role); err != nil {
		return err
	}

	uc.recordAction(ctx, input.ActorID,
		fmt.Sprintf("Admin promoted %s to %s", input.AccountID, input.Role), input.Origin)

	return nil
}

// AuditTrail lists audit entries, optionally narrowed to one account.
func (uc *AdminUseCase) AuditTrail(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	if filter.Limit <= 0 || filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}

	return uc.audits.List(ctx, filter)
}

func (uc *AdminUseCase) recordAction(ctx context.Context, actorID, action, origin string) {
	entry := &domain.AuditEntry{
		Action:    action,
		IPAddress: origin,
		CreatedAt: time.Now().UTC(),
	}
	if actorID != "" {
		entry.AccountID = &actorID
	}

	if err := uc.audits.Create(ctx, entry); err != nil {
		uc.logger.Warn().Err(err).Str("action", action).Msg("audit write failed")
	}
}
