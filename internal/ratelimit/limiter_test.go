// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/taibuivan/certly/internal/platform/redis"
	"github.com/taibuivan/certly/internal/ratelimit"
)

func newTestLimiter(t *testing.T) (*miniredis.Miniredis, *ratelimit.Limiter) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, ratelimit.New(redisstore.NewStore(client))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rate_limit:code:a@x.com", ratelimit.Key(ratelimit.RealmCode, "a@x.com"))
	assert.Equal(t, "rate_limit:token_tries:abc", ratelimit.Key(ratelimit.RealmTokenTries, "abc"))
}

/*
TestLimiter_WindowLifecycle checks the limit boundary and the reset after the window.
*/
func TestLimiter_WindowLifecycle(t *testing.T) {
	mr, limiter := newTestLimiter(t)
	ctx := context.Background()
	const limit = 5

	for i := 1; i <= limit; i++ {
		assert.True(t, limiter.Check(ctx, ratelimit.RealmCode, "10.0.0.1", limit), "before increment %d", i)

		count, err := limiter.Increment(ctx, ratelimit.RealmCode, "10.0.0.1", 10*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
	}

	assert.False(t, limiter.Check(ctx, ratelimit.RealmCode, "10.0.0.1", limit))

	mr.FastForward(10*time.Minute + time.Second)
	assert.True(t, limiter.Check(ctx, ratelimit.RealmCode, "10.0.0.1", limit))
}

/*
TestLimiter_DecayingWindow verifies that each increment extends the window.
*/
func TestLimiter_DecayingWindow(t *testing.T) {
	mr, limiter := newTestLimiter(t)
	ctx := context.Background()

	_, err := limiter.Increment(ctx, ratelimit.RealmCode, "a@x.com", 3*time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = limiter.Increment(ctx, ratelimit.RealmCode, "a@x.com", 3*time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.False(t, limiter.Check(ctx, ratelimit.RealmCode, "a@x.com", 1))

	remaining, until, err := limiter.RemainingTime(ctx, ratelimit.RealmCode, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, remaining)
	assert.True(t, until.After(time.Now()))
}

/*
TestLimiter_SubjectsAreIsolated verifies namespacing by realm and subject.
*/
func TestLimiter_SubjectsAreIsolated(t *testing.T) {
	_, limiter := newTestLimiter(t)
	ctx := context.Background()

	_, err := limiter.Increment(ctx, ratelimit.RealmCode, "a@x.com", time.Minute)
	require.NoError(t, err)

	assert.False(t, limiter.Check(ctx, ratelimit.RealmCode, "a@x.com", 1))
	assert.True(t, limiter.Check(ctx, ratelimit.RealmCode, "b@x.com", 1))
	assert.True(t, limiter.Check(ctx, ratelimit.RealmForgot, "a@x.com", 1))
}

func TestLimiter_Reset(t *testing.T) {
	_, limiter := newTestLimiter(t)
	ctx := context.Background()

	_, err := limiter.Increment(ctx, ratelimit.RealmCode, "a@x.com", time.Minute)
	require.NoError(t, err)
	require.NoError(t, limiter.Reset(ctx, ratelimit.RealmCode, "a@x.com"))

	count, err := limiter.Count(ctx, ratelimit.RealmCode, "a@x.com")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Resetting an absent counter is not an error.
	require.NoError(t, limiter.Reset(ctx, ratelimit.RealmCode, "a@x.com"))
}

/*
TestLimiter_Block verifies the lockout marker overrides any real limit for its duration.
*/
func TestLimiter_Block(t *testing.T) {
	mr, limiter := newTestLimiter(t)
	ctx := context.Background()

	until, err := limiter.Block(ctx, ratelimit.RealmCode, "a@x.com", 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), until, 2*time.Second)

	value, err := mr.Get(ratelimit.Key(ratelimit.RealmCode, "a@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "10000", value)

	assert.False(t, limiter.Check(ctx, ratelimit.RealmCode, "a@x.com", 1000))

	mr.FastForward(15*time.Minute + time.Second)
	assert.True(t, limiter.Check(ctx, ratelimit.RealmCode, "a@x.com", 1))
}

/*
TestLimiter_RuleHelpers exercises the Rule-based convenience API.
*/
func TestLimiter_RuleHelpers(t *testing.T) {
	_, limiter := newTestLimiter(t)
	ctx := context.Background()
	rule := ratelimit.Rule{Realm: ratelimit.RealmForgot, Limit: 3, Window: 10 * time.Minute}

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allowed(ctx, rule, "10.0.0.2"))
		_, err := limiter.Hit(ctx, rule, "10.0.0.2")
		require.NoError(t, err)
	}
	assert.False(t, limiter.Allowed(ctx, rule, "10.0.0.2"))

	remaining, _, err := limiter.RetryAfter(ctx, rule, "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, remaining)
}

/*
TestLimiter_CheckFailsOpen verifies that a storage outage does not block callers.
*/
func TestLimiter_CheckFailsOpen(t *testing.T) {
	mr, limiter := newTestLimiter(t)
	mr.Close()

	assert.True(t, limiter.Check(context.Background(), ratelimit.RealmCode, "a@x.com", 1))

	_, err := limiter.Increment(context.Background(), ratelimit.RealmCode, "a@x.com", time.Minute)
	assert.ErrorIs(t, err, redisstore.ErrStorage)
}
