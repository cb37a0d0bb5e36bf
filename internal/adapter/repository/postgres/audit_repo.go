package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
)

const auditInsert = `
	INSERT INTO audit_logs (account_id, action, ip_address, created_at)
	VALUES ($1, $2, $3, $4)`

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts an audit entry in its own implicit transaction.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	_, err := r.pool.Exec(ctx, auditInsert,
		entry.AccountID, entry.Action, entry.IPAddress, timeToPgTimestamptz(entry.CreatedAt))

	return err
}

// CreateTx inserts an audit entry inside tx, so it commits or rolls back
// together with the mutation it describes.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entry *domain.AuditEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, auditInsert,
		entry.AccountID, entry.Action, entry.IPAddress, timeToPgTimestamptz(entry.CreatedAt))

	return err
}

// List retrieves audit entries, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, account_id, action, ip_address, created_at
		FROM audit_logs
		WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.AccountID != "" {
		query += fmt.Sprintf(` AND account_id = $%d`, argPos)
		args = append(args, filter.AccountID)
		argPos++
	}

	query += ` ORDER BY id DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argPos)
		args = append(args, filter.Limit)
		argPos++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var (
			entry     domain.AuditEntry
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Action, &entry.IPAddress, &createdAt)
		if err != nil {
			return nil, err
		}

		entry.CreatedAt = createdAt.Time

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
