package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// Resolve matches identifier case-insensitively against account id or
	// username, without taking a lock.
	Resolve(ctx context.Context, identifier string) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// GetManyForUpdate locks the accounts in ascending id order regardless
	// of the order of ids, so concurrent callers cannot deadlock.
	GetManyForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	SetFrozen(ctx context.Context, id string, frozen bool) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	SetBalance(ctx context.Context, id string, balance decimal.Decimal) error
	Stats(ctx context.Context) (*domain.LedgerStats, error)
}

// TransactionRepository defines data access for the immutable transaction
// log.
type TransactionRepository interface {
	// Append durably appends a record inside tx and returns the assigned
	// sequence id. Records are never updated in place.
	Append(ctx context.Context, tx Transaction, record *domain.Transaction) (int64, error)
	// SumTransfersSince aggregates TRANSFER amounts sent by senderID at or
	// after since. Callers invoke it before appending the record under
	// validation so the total reflects committed data only.
	SumTransfersSince(ctx context.Context, tx Transaction, senderID string, since time.Time) (decimal.Decimal, error)
	History(ctx context.Context, q HistoryQuery) ([]*domain.TransactionDetail, int64, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.TransactionDetail, error)
}

// HistoryQuery describes a paginated history lookup for one account.
type HistoryQuery struct {
	AccountID string
	Filter    domain.HistoryFilter
	Limit     int
	Offset    int
}

// AuditRepository defines data access for audit entries. CreateTx joins
// the given unit of work so the entry commits with the mutation it
// describes; Create commits independently.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	CreateTx(ctx context.Context, tx Transaction, entry *domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}

// ChallengeStore issues and consumes one-time codes for step-up
// authentication. Issuing overwrites any prior live challenge for the
// account; verification is single use.
type ChallengeStore interface {
	Issue(ctx context.Context, accountID string) (*domain.Challenge, error)
	// VerifyAndConsume deletes the challenge on an exact, unexpired match
	// and returns domain.ErrChallengeInvalid otherwise, leaving any stored
	// challenge intact.
	VerifyAndConsume(ctx context.Context, accountID, code string) error
}

// Notifier delivers one-time codes out of band. Production
// implementations send SMS or email; the code must never be written to a
// response body.
type Notifier interface {
	ChallengeIssued(ctx context.Context, accountID, code string, expiresAt time.Time)
}

// Transaction represents a database unit of work.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles unit-of-work lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// RefGenerator generates globally unique, human-shareable reference codes
// for transaction records.
type RefGenerator interface {
	Generate() string
}
