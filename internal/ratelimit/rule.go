// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"context"
	"time"
)

// Rule is one throttling policy: at most Limit events per Window in Realm.
type Rule struct {
	Realm  string
	Limit  int64
	Window time.Duration
}

// Allowed reports whether subject is still below the rule's limit.
func (limiter *Limiter) Allowed(context context.Context, rule Rule, subject string) bool {
	return limiter.Check(context, rule.Realm, subject, rule.Limit)
}

// Hit records one event for subject under the rule's window.
func (limiter *Limiter) Hit(context context.Context, rule Rule, subject string) (int64, error) {
	return limiter.Increment(context, rule.Realm, subject, rule.Window)
}

// RetryAfter returns the remaining block for subject under the rule.
func (limiter *Limiter) RetryAfter(context context.Context, rule Rule, subject string) (time.Duration, time.Time, error) {
	return limiter.RemainingTime(context, rule.Realm, subject)
}
