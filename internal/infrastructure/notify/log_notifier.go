// Package notify delivers step-up one-time codes out of band. The
// production deployment plugs an SMS or email gateway in here; the code
// must never travel back on the API response.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogNotifier writes issued codes to the application log. Development and
// test environments only.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// ChallengeIssued logs the issued code.
func (n *LogNotifier) ChallengeIssued(ctx context.Context, accountID, code string, expiresAt time.Time) {
	n.logger.Info().
		Str("account_id", accountID).
		Str("code", code).
		Time("expires_at", expiresAt).
		Msg("step-up challenge issued")
}
