package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Challenge is a short-lived one-time code issued for step-up
// authentication of high-value transfers. At most one live challenge
// exists per account; a new issue overwrites the prior one, and a code is
// consumed on first successful verification.
type Challenge struct {
	AccountID string
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its expiry at now.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Matches reports whether the supplied code matches exactly.
func (c *Challenge) Matches(code string) bool {
	return code != "" && c.Code == code
}

// GenerateChallengeCode returns a 6-digit numeric one-time code.
func GenerateChallengeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate challenge code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
