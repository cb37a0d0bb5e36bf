package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogNotifier_ChallengeIssued(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	notifier := NewLogNotifier(logger)
	notifier.ChallengeIssued(context.Background(), "acc-1", "123456", time.Now().Add(5*time.Minute))

	out := buf.String()
	assert.Contains(t, out, "acc-1")
	assert.Contains(t, out, "123456")
	assert.Contains(t, out, "step-up challenge issued")
}
