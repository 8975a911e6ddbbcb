// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package verification

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RecordTTL is the absolute lifetime of a pending verification.
const RecordTTL = 24 * time.Hour

// Purpose is the action a verification code authorizes.
type Purpose string

const (
	// PurposeCreate authorizes creating a certificate.
	PurposeCreate Purpose = "create"
	// PurposeDelete authorizes deleting a certificate.
	PurposeDelete Purpose = "delete"
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	return p == PurposeCreate || p == PurposeDelete
}

// Record is a pending verification as stored under confirm_code:{email}.
type Record struct {
	Token   string
	Code    string
	Purpose Purpose
}

// KeyValue is the subset of the key-value adapter used by the verification package.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration, onlyIfAbsent bool) (bool, error)
	Delete(ctx context.Context, key string) (int64, error)
}

// Store persists one pending verification per email address.
//
// The key is per-email, not per-token: issuing a new code silently replaces
// any previous unconfirmed one.
type Store struct {
	kv  KeyValue
	now func() time.Time
}

// NewStore creates a verification [Store] over the key-value adapter.
func NewStore(kv KeyValue) *Store {
	return &Store{kv: kv, now: time.Now}
}

// RecordKey returns the storage key of the pending verification for email.
func RecordKey(email string) string {
	return "confirm_code:" + email
}

/*
Save writes the (token, code, purpose) triple for email with a 24h TTL,
overwriting any earlier record.

Returns:
  - time.Time: The absolute expiry, for display to the caller
  - error: Storage failures
*/
func (store *Store) Save(context context.Context, email string, purpose Purpose, code, token string) (time.Time, error) {
	value := encodeRecord(Record{Token: token, Code: code, Purpose: purpose})

	if _, err := store.kv.Set(context, RecordKey(email), value, RecordTTL, false); err != nil {
		return time.Time{}, fmt.Errorf("verification_record_save_failed: %w", err)
	}

	return store.now().Add(RecordTTL), nil
}

// Remove deletes the pending verification for email. Absence is not an error.
func (store *Store) Remove(context context.Context, email string) error {
	if _, err := store.kv.Delete(context, RecordKey(email)); err != nil {
		return fmt.Errorf("verification_record_remove_failed: %w", err)
	}
	return nil
}

/*
Load reads the pending verification for email.

The boolean is false when no record exists or when the stored value is not in
the {token}:{code}:{purpose} format.
*/
func (store *Store) Load(context context.Context, email string) (Record, bool, error) {
	raw, found, err := store.kv.Get(context, RecordKey(email))
	if err != nil {
		return Record{}, false, fmt.Errorf("verification_record_load_failed: %w", err)
	}
	if !found {
		return Record{}, false, nil
	}

	record, ok := decodeRecord(raw)
	return record, ok, nil
}

func encodeRecord(record Record) string {
	return record.Token + ":" + record.Code + ":" + string(record.Purpose)
}

func decodeRecord(raw string) (Record, bool) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return Record{}, false
	}

	return Record{
		Token:   parts[0],
		Code:    parts[1],
		Purpose: Purpose(parts[2]),
	}, true
}
