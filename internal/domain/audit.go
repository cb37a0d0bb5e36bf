package domain

import "time"

// AuditEntry is an append-only record of an action. Writes are best
// effort: a failed audit write never rolls back the financial mutation it
// describes.
type AuditEntry struct {
	ID        int64
	AccountID *string
	Action    string
	IPAddress string
	CreatedAt time.Time
}

// AuditFilter narrows an audit log query.
type AuditFilter struct {
	AccountID string
	Limit     int
	Offset    int
}
