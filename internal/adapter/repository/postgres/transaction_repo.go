package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kodbank/kodbank/internal/domain"
	"github.com/kodbank/kodbank/internal/usecase"
)

const detailColumns = `
	t.seq, t.ref_code, t.sender_id, t.receiver_id, t.amount, t.kind,
	t.balance_after, t.status, t.description, t.created_at,
	COALESCE(s.username, ''), COALESCE(r.username, '')`

const detailJoins = `
	FROM transactions t
	LEFT JOIN accounts s ON s.id = t.sender_id
	LEFT JOIN accounts r ON r.id = t.receiver_id`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Append durably appends a record inside tx and returns the assigned
// sequence id.
func (r *TransactionRepository) Append(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var seq int64
	err := pgxTx.QueryRow(ctx,
		`INSERT INTO transactions (
			ref_code, sender_id, receiver_id, amount, kind,
			balance_after, status, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`,
		record.RefCode,
		record.SenderID,
		record.ReceiverID,
		decimalToNumeric(record.Amount),
		string(record.Kind),
		decimalToNumeric(record.BalanceAfter),
		string(record.Status),
		record.Description,
		timeToPgTimestamptz(record.CreatedAt),
	).Scan(&seq)
	if err != nil {
		return 0, err
	}

	return seq, nil
}

// SumTransfersSince aggregates successful TRANSFER amounts sent by
// senderID at or after since. Run inside tx after the sender row is
// locked, it reflects committed data only: competing transfers either
// committed before the lock was granted or are still queued behind it.
func (r *TransactionRepository) SumTransfersSince(ctx context.Context, tx usecase.Transaction, senderID string, since time.Time) (decimal.Decimal, error) {
	pgxTx := tx.(*Tx).PgxTx()

	var total pgtype.Numeric
	err := pgxTx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE sender_id = $1
		   AND kind = 'TRANSFER'
		   AND status = 'SUCCESS'
		   AND created_at >= $2`,
		senderID, timeToPgTimestamptz(since)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// History returns a page of an account's records, newest first, with
// resolved counterparty names, plus the total count matching the filter.
func (r *TransactionRepository) History(ctx context.Context, q usecase.HistoryQuery) ([]*domain.TransactionDetail, int64, error) {
	condition := historyCondition(q.Filter)

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions t WHERE `+condition, q.AccountID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+detailColumns+detailJoins+`
		 WHERE `+condition+`
		 ORDER BY t.seq DESC
		 LIMIT $2 OFFSET $3`,
		q.AccountID, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	details, err := scanDetails(rows)
	if err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

// ListRecent returns the newest records across all accounts.
func (r *TransactionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.TransactionDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+detailColumns+detailJoins+`
		 ORDER BY t.seq DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDetails(rows)
}

func historyCondition(filter domain.HistoryFilter) string {
	switch filter {
	case domain.FilterDeposit:
		return `t.kind = 'DEPOSIT' AND t.receiver_id = $1`
	case domain.FilterWithdraw:
		return `t.kind = 'WITHDRAW' AND t.sender_id = $1`
	case domain.FilterTransfer:
		return `t.kind = 'TRANSFER' AND (t.sender_id = $1 OR t.receiver_id = $1)`
	case domain.FilterSent:
		return `t.kind = 'TRANSFER' AND t.sender_id = $1`
	case domain.FilterReceived:
		return `t.kind = 'TRANSFER' AND t.receiver_id = $1`
	default:
		return `(t.sender_id = $1 OR t.receiver_id = $1)`
	}
}

func scanDetails(rows pgx.Rows) ([]*domain.TransactionDetail, error) {
	var details []*domain.TransactionDetail
	for rows.Next() {
		var (
			detail       domain.TransactionDetail
			amount       pgtype.Numeric
			kind         string
			balanceAfter pgtype.Numeric
			status       string
			createdAt    pgtype.Timestamptz
		)

		err := rows.Scan(
			&detail.Seq,
			&detail.RefCode,
			&detail.SenderID,
			&detail.ReceiverID,
			&amount,
			&kind,
			&balanceAfter,
			&status,
			&detail.Description,
			&createdAt,
			&detail.SenderName,
			&detail.ReceiverName,
		)
		if err != nil {
			return nil, err
		}

		detail.Amount = numericToDecimal(amount)
		detail.Kind = domain.Kind(kind)
		detail.BalanceAfter = numericToDecimal(balanceAfter)
		detail.Status = domain.Status(status)
		detail.CreatedAt = createdAt.Time

		details = append(details, &detail)
	}

	return details, rows.Err()
}
