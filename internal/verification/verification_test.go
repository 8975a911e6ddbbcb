// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package verification_test

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
	"github.com/taibuivan/certly/internal/verification"
)

const (
	testEmail = "a@x.com"
	testToken = "abcdefghijABCDEFGHIJ0123456789xy"
	testCode  = "ABC123DEF"
)

type fixture struct {
	mr       *miniredis.Miniredis
	store    *verification.Store
	verifier *verification.Verifier
	guard    *verification.Guard
	limiter  *ratelimit.Limiter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	kv := redisstore.NewStore(client)
	store := verification.NewStore(kv)
	limiter := ratelimit.New(kv)

	return &fixture{
		mr:       mr,
		store:    store,
		verifier: verification.NewVerifier(store),
		guard:    verification.NewGuard(store, limiter, 0, 0),
		limiter:  limiter,
	}
}

/*
TestStore_SaveLoad covers the stored value layout and its TTL.
*/
func TestStore_SaveLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expiresAt, err := f.store.Save(ctx, testEmail, verification.PurposeCreate, testCode, testToken)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 2*time.Second)

	raw, err := f.mr.Get(verification.RecordKey(testEmail))
	require.NoError(t, err)
	assert.Equal(t, testToken+":"+testCode+":create", raw)
	assert.Equal(t, 24*time.Hour, f.mr.TTL(verification.RecordKey(testEmail)))

	record, found, err := f.store.Load(ctx, testEmail)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, verification.Record{Token: testToken, Code: testCode, Purpose: verification.PurposeCreate}, record)

	f.mr.FastForward(24*time.Hour + time.Second)
	_, found, err = f.store.Load(ctx, testEmail)
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestStore_LastIssuedWins verifies that a second issuance replaces the first.
*/
func TestStore_LastIssuedWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, testEmail, verification.PurposeCreate, testCode, testToken)
	require.NoError(t, err)

	const secondToken = "zyxwvutsrqZYXWVUTSRQ9876543210ab"
	_, err = f.store.Save(ctx, testEmail, verification.PurposeDelete, "XYZ789QRS", secondToken)
	require.NoError(t, err)

	// First pair is no longer confirmable
	result := f.verifier.Verify(ctx, testEmail, testToken, testCode)
	assert.Equal(t, verification.OutcomeInvalidToken, result.Outcome)

	result = f.verifier.Verify(ctx, testEmail, secondToken, "XYZ789QRS")
	assert.Equal(t, verification.OutcomeOK, result.Outcome)
	assert.Equal(t, verification.PurposeDelete, result.Purpose)
}

func TestVerifier_Verify(t *testing.T) {
	tests := []struct {
		name   string
		seed   string
		token  string
		code   string
		want   verification.Outcome
		intent verification.Purpose
	}{
		{"ok", testToken + ":" + testCode + ":create", testToken, testCode, verification.OutcomeOK, verification.PurposeCreate},
		{"ok delete", testToken + ":" + testCode + ":delete", testToken, testCode, verification.OutcomeOK, verification.PurposeDelete},
		{"no record", "", testToken, testCode, verification.OutcomeNotFound, ""},
		{"corrupt record", "garbage", testToken, testCode, verification.OutcomeNotFound, ""},
		{"unknown purpose", testToken + ":" + testCode + ":rename", testToken, testCode, verification.OutcomeNotFound, ""},
		{"malformed code", testToken + ":" + testCode + ":create", testToken, "ABC", verification.OutcomeInvalidCode, ""},
		{"wrong code", testToken + ":" + testCode + ":create", testToken, "ABC124DEF", verification.OutcomeInvalidCode, ""},
		{"malformed token", testToken + ":" + testCode + ":create", "short", testCode, verification.OutcomeInvalidCode, ""},
		{"wrong token wins over wrong code", testToken + ":" + testCode + ":create", "zyxwvutsrqZYXWVUTSRQ9876543210ab", "ABC124DEF", verification.OutcomeInvalidToken, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.seed != "" {
				require.NoError(t, f.mr.Set(verification.RecordKey(testEmail), tc.seed))
			}

			result := f.verifier.Verify(context.Background(), testEmail, tc.token, tc.code)
			assert.Equal(t, tc.want, result.Outcome)
			assert.Equal(t, tc.intent, result.Purpose)
			assert.NoError(t, result.Err)
		})
	}
}

/*
TestVerifier_StoreDown verifies that a read failure is reported, not mistaken for absence.
*/
func TestVerifier_StoreDown(t *testing.T) {
	f := newFixture(t)
	f.mr.Close()

	result := f.verifier.Verify(context.Background(), testEmail, testToken, testCode)
	assert.Equal(t, verification.OutcomeUnknownError, result.Outcome)
	assert.ErrorIs(t, result.Err, redisstore.ErrStorage)
}

/*
TestGuard_LockoutAfterMaxTries drives five invalid codes against one token.
*/
func TestGuard_LockoutAfterMaxTries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Save(ctx, testEmail, verification.PurposeCreate, testCode, testToken)
	require.NoError(t, err)

	for i := 1; i < verification.DefaultMaxTries; i++ {
		lockout := f.guard.OnInvalidCode(ctx, testEmail, testToken)
		assert.False(t, lockout.TriesOut, "attempt %d", i)
	}

	lockout := f.guard.OnInvalidCode(ctx, testEmail, testToken)
	require.True(t, lockout.TriesOut)
	assert.Equal(t, 15*time.Minute, lockout.RetryAfter)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), lockout.BlockedUntil, 2*time.Second)

	// Record and tries counter are gone
	assert.False(t, f.mr.Exists(verification.RecordKey(testEmail)))
	assert.False(t, f.mr.Exists(ratelimit.Key(ratelimit.RealmTokenTries, testToken)))

	// Issuance for the email is blocked for the lockout window
	assert.False(t, f.limiter.Check(ctx, ratelimit.RealmCode, testEmail, 1))
	remaining, _, err := f.limiter.RemainingTime(ctx, ratelimit.RealmCode, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, remaining)

	// The correct pair no longer confirms anything
	result := f.verifier.Verify(ctx, testEmail, testToken, testCode)
	assert.Equal(t, verification.OutcomeNotFound, result.Outcome)

	f.mr.FastForward(15*time.Minute + time.Second)
	assert.True(t, f.limiter.Check(ctx, ratelimit.RealmCode, testEmail, 1))
}

/*
TestGuard_OnSuccess verifies that consuming a record resets the issuance counter.
*/
func TestGuard_OnSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.limiter.Increment(ctx, ratelimit.RealmCode, testEmail, 3*time.Minute)
	require.NoError(t, err)
	_, err = f.store.Save(ctx, testEmail, verification.PurposeCreate, testCode, testToken)
	require.NoError(t, err)
	_ = f.guard.OnInvalidCode(ctx, testEmail, testToken)

	require.NoError(t, f.guard.OnSuccess(ctx, testEmail, testToken))

	assert.False(t, f.mr.Exists(verification.RecordKey(testEmail)))
	assert.False(t, f.mr.Exists(ratelimit.Key(ratelimit.RealmCode, testEmail)))
	assert.False(t, f.mr.Exists(ratelimit.Key(ratelimit.RealmTokenTries, testToken)))

	// A second confirmation with the same pair finds nothing
	result := f.verifier.Verify(ctx, testEmail, testToken, testCode)
	assert.Equal(t, verification.OutcomeNotFound, result.Outcome)
}

/*
TestGuard_CustomPolicy checks that configured thresholds override the defaults.
*/
func TestGuard_CustomPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guard := verification.NewGuard(f.store, f.limiter, 2, time.Minute)

	assert.False(t, guard.OnInvalidCode(ctx, testEmail, testToken).TriesOut)
	lockout := guard.OnInvalidCode(ctx, testEmail, testToken)
	assert.True(t, lockout.TriesOut)
	assert.Equal(t, time.Minute, lockout.RetryAfter)
}
