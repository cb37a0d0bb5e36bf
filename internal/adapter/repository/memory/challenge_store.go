// Package memory holds volatile, single-process implementations of the
// engine's capability interfaces. The challenge store here is suitable
// for a single replica only: codes issued by one process are invisible to
// another. Multi-replica deployments should use the redis store instead.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kodbank/kodbank/internal/domain"
)

// ChallengeStore keeps one-time codes in process memory, keyed by account
// id. A new issue overwrites any prior challenge for the account.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]*domain.Challenge
	ttl        time.Duration
	now        func() time.Time
}

// NewChallengeStore creates a new in-memory ChallengeStore.
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{
		challenges: make(map[string]*domain.Challenge),
		ttl:        ttl,
		now:        time.Now,
	}
}

// SetNow overrides the clock. Test hook.
func (s *ChallengeStore) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Issue generates a fresh 6-digit code for the account, replacing any
// prior challenge.
func (s *ChallengeStore) Issue(ctx context.Context, accountID string) (*domain.Challenge, error) {
	code, err := domain.GenerateChallengeCode()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	challenge := &domain.Challenge{
		AccountID: accountID,
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.challenges[accountID] = challenge

	return challenge, nil
}

// VerifyAndConsume deletes the challenge on an exact, unexpired match. On
// any failure the stored challenge is left intact so a fresh attempt can
// be made without re-issuing.
func (s *ChallengeStore) VerifyAndConsume(ctx context.Context, accountID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[accountID]
	if !ok {
		return domain.ErrChallengeInvalid
	}

	if challenge.Expired(s.now()) {
		delete(s.challenges, accountID)
		return domain.ErrChallengeInvalid
	}

	if !challenge.Matches(code) {
		return domain.ErrChallengeInvalid
	}

	delete(s.challenges, accountID)

	return nil
}
