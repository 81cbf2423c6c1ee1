package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := NewTokenBucket(3, 1, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := bucket.Allow()
		assert.True(t, allowed, "attempt %d", i)
	}

	allowed, wait := bucket.Allow()
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := NewTokenBucket(1, 1, 10*time.Millisecond)

	allowed, _ := bucket.Allow()
	assert.True(t, allowed)

	allowed, _ = bucket.Allow()
	assert.False(t, allowed)

	time.Sleep(15 * time.Millisecond)

	allowed, _ = bucket.Allow()
	assert.True(t, allowed)
}

func TestRateLimiterIsolatesUsersAndActions(t *testing.T) {
	rl := NewRateLimiter()

	// Exhaust create_room for one user.
	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow("user-a", "create_room")
		assert.True(t, allowed)
	}
	allowed, _ := rl.Allow("user-a", "create_room")
	assert.False(t, allowed)

	// Another user and another action are unaffected.
	allowed, _ = rl.Allow("user-b", "create_room")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("user-a", "send_message")
	assert.True(t, allowed)
}

func TestRateLimiterStatus(t *testing.T) {
	rl := NewRateLimiter()

	tokens, max := rl.GetStatus("user-a", "send_message")
	assert.Zero(t, max)

	rl.Allow("user-a", "send_message")
	tokens, max = rl.GetStatus("user-a", "send_message")
	assert.Equal(t, 10, max)
	assert.Equal(t, 9, tokens)
}
