// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package verification

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/certly/internal/platform/ctxutil"
	"github.com/taibuivan/certly/internal/ratelimit"
)

// # Lockout Policy

const (
	// DefaultMaxTries is the number of invalid codes that triggers a lockout.
	DefaultMaxTries = 5
	// DefaultLockoutDuration is how long issuance stays blocked after a lockout.
	DefaultLockoutDuration = 15 * time.Minute
	// TriesTTL is the lifetime of the per-token invalid attempt counter.
	TriesTTL = 24 * time.Hour
)

// Lockout is the escalation decision after an invalid code.
// TriesOut false means the caller should report a plain invalid code.
type Lockout struct {
	TriesOut     bool
	RetryAfter   time.Duration
	BlockedUntil time.Time
}

// Guard applies the side effects of verification outcomes.
type Guard struct {
	store    *Store
	limiter  *ratelimit.Limiter
	maxTries int64
	duration time.Duration
}

// NewGuard creates a [Guard]. Zero policy values fall back to the defaults.
func NewGuard(store *Store, limiter *ratelimit.Limiter, maxTries int64, duration time.Duration) *Guard {
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	return &Guard{store: store, limiter: limiter, maxTries: maxTries, duration: duration}
}

/*
OnInvalidCode counts a failed attempt against token and escalates once the
counter reaches the configured maximum.

Escalation deletes the pending record for email, clears the counter and
blocks further issuance to email for the lockout duration. The steps are not
atomic; each failure is logged and skipped. A failure to count the attempt
itself degrades to a plain invalid code.
*/
func (guard *Guard) OnInvalidCode(context context.Context, email, token string) Lockout {
	logger := ctxutil.GetLogger(context)

	tries, err := guard.limiter.Increment(context, ratelimit.RealmTokenTries, token, TriesTTL)
	if err != nil {
		logger.WarnContext(context, "token_tries_increment_failed", slog.Any("error", err))
		return Lockout{}
	}
	if tries < guard.maxTries {
		return Lockout{}
	}

	if err := guard.store.Remove(context, email); err != nil {
		logger.WarnContext(context, "lockout_record_remove_failed", slog.Any("error", err))
	}
	if err := guard.limiter.Reset(context, ratelimit.RealmTokenTries, token); err != nil {
		logger.WarnContext(context, "lockout_tries_reset_failed", slog.Any("error", err))
	}

	until, err := guard.limiter.Block(context, ratelimit.RealmCode, email, guard.duration)
	if err != nil {
		logger.WarnContext(context, "lockout_block_failed", slog.Any("error", err))
	}

	logger.InfoContext(context, "verification_locked_out",
		slog.Int64("tries", tries),
		slog.Time("blocked_until", until),
	)

	return Lockout{TriesOut: true, RetryAfter: guard.duration, BlockedUntil: until}
}

/*
OnSuccess consumes the pending verification: the record is deleted and the
issuance counter for email and the tries counter for token are reset.

Only the record removal is reported; counter resets are best-effort.
*/
func (guard *Guard) OnSuccess(context context.Context, email, token string) error {
	if err := guard.store.Remove(context, email); err != nil {
		return err
	}

	logger := ctxutil.GetLogger(context)
	if err := guard.limiter.Reset(context, ratelimit.RealmCode, email); err != nil {
		logger.WarnContext(context, "code_counter_reset_failed", slog.Any("error", err))
	}
	if err := guard.limiter.Reset(context, ratelimit.RealmTokenTries, token); err != nil {
		logger.WarnContext(context, "token_tries_reset_failed", slog.Any("error", err))
	}
	return nil
}
