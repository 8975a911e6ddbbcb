// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit implements "N events per window per (realm, subject)"
counters on top of the shared key-value store.

Window semantics:

  - Counters live at rate_limit:{realm}:{subject}.
  - Every increment reapplies the window TTL, so the window decays from the
    last event rather than the first. Heavy bursts extend the block.
  - Expiry is delegated entirely to Redis; there is no sweep process.

A lockout marker is the same counter forced to a sentinel far above any real
limit, so blocking reuses the regular [Limiter.Check] path.
*/
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/certly/internal/platform/ctxutil"
)

// # Realms

const (
	// RealmCode throttles issuance of confirmation codes.
	RealmCode = "code"
	// RealmForgot throttles certificate recovery emails.
	RealmForgot = "forgot"
	// RealmTokenTries counts invalid code attempts per issued token.
	RealmTokenTries = "token_tries"
)

// LockoutSentinel is the value written by [Limiter.Block].
const LockoutSentinel = 10000

// Store is the subset of the key-value adapter the limiter needs.
type Store interface {
	GetInt(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration, onlyIfAbsent bool) (bool, error)
	IncrementBy(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string) (int64, error)
	TimeToLive(ctx context.Context, key string) (time.Duration, time.Time, error)
}

// Limiter reads and updates rate counters. It holds no state of its own.
type Limiter struct {
	store Store
	now   func() time.Time
}

// New creates a [Limiter] backed by the given store.
func New(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

// Key returns the storage key of the counter for (realm, subject).
func Key(realm, subject string) string {
	return "rate_limit:" + realm + ":" + subject
}

// Count returns the current counter value; an absent key counts as zero.
func (limiter *Limiter) Count(context context.Context, realm, subject string) (int64, error) {
	count, _, err := limiter.store.GetInt(context, Key(realm, subject))
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}

/*
Check reports whether the subject is still below limit in realm.

It never mutates. A storage failure is logged and treated as a zero count so
that a Redis hiccup does not lock every user out.
*/
func (limiter *Limiter) Check(context context.Context, realm, subject string, limit int64) bool {
	count, err := limiter.Count(context, realm, subject)
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "rate_counter_read_failed",
			slog.String("realm", realm),
			slog.Any("error", err),
		)
		return true
	}
	return count < limit
}

// Increment atomically bumps the counter and reapplies window as its TTL.
// It returns the new count.
func (limiter *Limiter) Increment(context context.Context, realm, subject string, window time.Duration) (int64, error) {
	return limiter.store.IncrementBy(context, Key(realm, subject), 1, window)
}

// RemainingTime returns how long the counter still lives and when it expires.
func (limiter *Limiter) RemainingTime(context context.Context, realm, subject string) (time.Duration, time.Time, error) {
	return limiter.store.TimeToLive(context, Key(realm, subject))
}

// Reset deletes the counter, immediately un-throttling the subject.
func (limiter *Limiter) Reset(context context.Context, realm, subject string) error {
	_, err := limiter.store.Delete(context, Key(realm, subject))
	return err
}

// Block forces the counter to [LockoutSentinel] for duration and returns the
// instant the block lifts. Any existing counter is overwritten.
func (limiter *Limiter) Block(context context.Context, realm, subject string, duration time.Duration) (time.Time, error) {
	until := limiter.now().Add(duration)
	if _, err := limiter.store.Set(context, Key(realm, subject), LockoutSentinel, duration, false); err != nil {
		return until, err
	}
	return until, nil
}
