package redis

import (
	"context"
	"testing"
	"time"

	"github.com/kodbank/kodbank/internal/domain"
)

func TestChallengeStore_IssueAndConsume(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewChallengeStore(client, 5*time.Minute)
	ctx := context.Background()

	challenge, err := store.Issue(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if len(challenge.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", challenge.Code)
	}

	if err := store.VerifyAndConsume(ctx, "acc-1", challenge.Code); err != nil {
		t.Fatalf("VerifyAndConsume failed: %v", err)
	}

	if err := store.VerifyAndConsume(ctx, "acc-1", challenge.Code); err != domain.ErrChallengeInvalid {
		t.Fatalf("expected ErrChallengeInvalid on replay, got %v", err)
	}
}

func TestChallengeStore_WrongCodeLeavesChallengeIntact(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewChallengeStore(client, 5*time.Minute)
	ctx := context.Background()

	challenge, err := store.Issue(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := store.VerifyAndConsume(ctx, "acc-1", "000000"); err != domain.ErrChallengeInvalid {
		t.Fatalf("expected ErrChallengeInvalid, got %v", err)
	}

	if err := store.VerifyAndConsume(ctx, "acc-1", challenge.Code); err != nil {
		t.Fatalf("VerifyAndConsume after wrong attempt failed: %v", err)
	}
}

func TestChallengeStore_Expiry(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewChallengeStore(client, 5*time.Minute)
	ctx := context.Background()

	challenge, err := store.Issue(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	mr.FastForward(6 * time.Minute)

	if err := store.VerifyAndConsume(ctx, "acc-1", challenge.Code); err != domain.ErrChallengeInvalid {
		t.Fatalf("expected ErrChallengeInvalid after expiry, got %v", err)
	}
}

func TestChallengeStore_ReissueOverwrites(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewChallengeStore(client, 5*time.Minute)
	ctx := context.Background()

	first, err := store.Issue(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	second, err := store.Issue(ctx, "acc-1")
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}

	if first.Code == second.Code {
		t.Skip("codes collided; re-run")
	}

	if err := store.VerifyAndConsume(ctx, "acc-1", first.Code); err != domain.ErrChallengeInvalid {
		t.Fatalf("superseded code must not verify, got %v", err)
	}

	if err := store.VerifyAndConsume(ctx, "acc-1", second.Code); err != nil {
		t.Fatalf("latest code must verify, got %v", err)
	}
}
