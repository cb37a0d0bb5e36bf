package usecase

import "time"

const (
	// DefaultChallengeTTL is how long an issued one-time code stays valid.
	DefaultChallengeTTL = 5 * time.Minute

	// DefaultPageSize is the history page size when none is requested.
	DefaultPageSize = 10

	// MaxPageSize caps the history page size.
	MaxPageSize = 100
)
