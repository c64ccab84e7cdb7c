package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComplaintKey(t *testing.T) {
	assert.Equal(t, "rl:complaint:abc", ComplaintKey("abc"))
	assert.Equal(t, "rl:complaint:a_b_c", ComplaintKey("a:b:c"))
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, RetryAfterSeconds(now, now))
	assert.Equal(t, 1, RetryAfterSeconds(now, now.Add(-time.Minute)))
	assert.Equal(t, 30, RetryAfterSeconds(now, now.Add(30*time.Second)))
	assert.Equal(t, 31, RetryAfterSeconds(now, now.Add(30*time.Second+time.Millisecond)))
}
