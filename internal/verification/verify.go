// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package verification owns the email confirmation-code lifecycle.

A pending verification is a (token, code, purpose) triple stored per email.
The token travels back to the client in the issuance response, the code
travels through the user's inbox. Confirmation needs both.

Lifecycle:

  - [Store.Save] creates or replaces the record (24h TTL).
  - [Verifier.Verify] is a read-only state machine over that record.
  - [Guard] applies the side effects: consume on success, count and
    eventually lock out on invalid codes.
*/
package verification

import (
	"context"
	"log/slog"

	"github.com/taibuivan/certly/internal/platform/ctxutil"
)

// Outcome is the result kind of a verification attempt.
type Outcome int

const (
	// OutcomeUnknownError means the store could not be read.
	OutcomeUnknownError Outcome = iota
	// OutcomeOK means token and code both matched.
	OutcomeOK
	// OutcomeInvalidToken means a record exists but was issued with another token.
	OutcomeInvalidToken
	// OutcomeInvalidCode means the code is malformed or does not match.
	OutcomeInvalidCode
	// OutcomeNotFound means no usable record exists for the email.
	OutcomeNotFound
)

// String returns the snake_case name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInvalidToken:
		return "invalid_token"
	case OutcomeInvalidCode:
		return "invalid_code"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown_error"
	}
}

// Result is the full answer of [Verifier.Verify].
// Purpose is set only for [OutcomeOK]; Err only for [OutcomeUnknownError].
type Result struct {
	Outcome Outcome
	Purpose Purpose
	Err     error
}

// Verifier evaluates confirmation attempts against the [Store].
type Verifier struct {
	store *Store
}

// NewVerifier creates a [Verifier] reading from store.
func NewVerifier(store *Store) *Verifier {
	return &Verifier{store: store}
}

/*
Verify decides whether (token, code) confirms the pending verification for email.

Checks run in a fixed order and the first failing one wins:

 1. Malformed code or token: InvalidCode, without touching the store.
 2. Store read failure: UnknownError.
 3. No record, or a record that cannot be parsed: NotFound.
 4. Token mismatch: InvalidToken. A mismatched token is never reported as a
    bad code, so callers cannot probe codes with a guessed token.
 5. Code mismatch: InvalidCode.

Verify never mutates state. Consuming the record and counting failures is
the job of [Guard].
*/
func (verifier *Verifier) Verify(context context.Context, email, token, code string) Result {
	if ValidateCodeFormat(code) != nil || ValidateTokenFormat(token) != nil {
		return Result{Outcome: OutcomeInvalidCode}
	}

	record, found, err := verifier.store.Load(context, email)
	if err != nil {
		ctxutil.GetLogger(context).ErrorContext(context, "verification_record_read_failed",
			slog.Any("error", err),
		)
		return Result{Outcome: OutcomeUnknownError, Err: err}
	}
	if !found || !record.Purpose.Valid() {
		return Result{Outcome: OutcomeNotFound}
	}

	if record.Token != token {
		return Result{Outcome: OutcomeInvalidToken}
	}
	if record.Code != code {
		return Result{Outcome: OutcomeInvalidCode}
	}

	return Result{Outcome: OutcomeOK, Purpose: record.Purpose}
}
