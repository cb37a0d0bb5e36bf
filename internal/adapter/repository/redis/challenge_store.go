package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kodbank/kodbank/internal/domain"
)

// consumeScript atomically deletes the stored code only when it matches
// the supplied one, so a code can never be consumed twice even under
// concurrent verification attempts.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ChallengeStore implements usecase.ChallengeStore on Redis, so step-up
// challenges survive process restarts and are shared across replicas.
type ChallengeStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewChallengeStore creates a new ChallengeStore.
func NewChallengeStore(client *redis.Client, ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{
		client: client,
		prefix: "challenge:",
		ttl:    ttl,
	}
}

// Issue generates a fresh 6-digit code for the account with the
// configured TTL, replacing any prior challenge.
func (s *ChallengeStore) Issue(ctx context.Context, accountID string) (*domain.Challenge, error) {
	code, err := domain.GenerateChallengeCode()
	if err != nil {
		return nil, err
	}

	if err := s.client.Set(ctx, s.prefix+accountID, code, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return &domain.Challenge{
		AccountID: accountID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// VerifyAndConsume deletes the challenge on an exact match; expiry is
// handled by the key TTL. On mismatch the stored challenge is left
// intact.
func (s *ChallengeStore) VerifyAndConsume(ctx context.Context, accountID, code string) error {
	if code == "" {
		return domain.ErrChallengeInvalid
	}

	deleted, err := consumeScript.Run(ctx, s.client, []string{s.prefix + accountID}, code).Int()
	if err != nil {
		return fmt.Errorf("failed to verify challenge: %w", err)
	}

	if deleted == 0 {
		return domain.ErrChallengeInvalid
	}

	return nil
}
