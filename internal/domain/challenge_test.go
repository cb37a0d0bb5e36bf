package domain

import (
	"testing"
	"time"
)

func TestGenerateChallengeCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := GenerateChallengeCode()
		if err != nil {
			t.Fatalf("GenerateChallengeCode failed: %v", err)
		}

		if len(code) != 6 {
			t.Fatalf("expected a 6-digit code, got %q", code)
		}

		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("expected digits only, got %q", code)
			}
		}

		// The first digit is never zero, so codes survive naive
		// integer round-trips.
		if code[0] == '0' {
			t.Fatalf("leading zero in %q", code)
		}

		seen[code] = true
	}

	if len(seen) < 2 {
		t.Fatal("codes are not random")
	}
}

func TestChallengeExpired(t *testing.T) {
	now := time.Now()
	c := &Challenge{AccountID: "acc-a", Code: "123456", ExpiresAt: now.Add(5 * time.Minute)}

	if c.Expired(now) {
		t.Fatal("fresh challenge must not be expired")
	}
	if c.Expired(now.Add(5 * time.Minute)) {
		t.Fatal("challenge at its exact expiry is still valid")
	}
	if !c.Expired(now.Add(5*time.Minute + time.Second)) {
		t.Fatal("challenge past expiry must be expired")
	}
}

func TestChallengeMatches(t *testing.T) {
	c := &Challenge{AccountID: "acc-a", Code: "123456"}

	if !c.Matches("123456") {
		t.Fatal("exact code must match")
	}
	if c.Matches("654321") {
		t.Fatal("wrong code must not match")
	}
	if c.Matches("") {
		t.Fatal("empty code must never match")
	}
}
