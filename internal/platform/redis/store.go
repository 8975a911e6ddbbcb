// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package redis

import (
	stdctx "context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStorage is returned (wrapped) for every Redis failure. Callers never
// distinguish network errors from command errors.
var ErrStorage = errors.New("redis: storage error")

// Store is a thin typed adapter over the shared key-value store.
//
// It owns no policy: key naming, windows and limits belong to the callers.
// Store is safe for concurrent use.
type Store struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewStore wraps an existing client. The client is not closed by the Store.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client, now: time.Now}
}

// Client exposes the underlying client for health checks.
func (store *Store) Client() redis.UniversalClient {
	return store.client
}

// Get returns the string value at key. The boolean is false when the key is absent.
func (store *Store) Get(context stdctx.Context, key string) (string, bool, error) {
	value, err := store.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, storageError("get", err)
	}
	return value, true, nil
}

// GetInt returns the integer value at key. The boolean is false when the key is absent.
func (store *Store) GetInt(context stdctx.Context, key string) (int64, bool, error) {
	raw, found, err := store.Get(context, key)
	if err != nil || !found {
		return 0, found, err
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, storageError("get_int", err)
	}
	return value, true, nil
}

// Set writes value at key with the given TTL.
//
// With onlyIfAbsent the write happens only when the key does not exist yet
// (SET NX); the returned boolean reports whether the value was written.
func (store *Store) Set(context stdctx.Context, key string, value any, ttl time.Duration, onlyIfAbsent bool) (bool, error) {
	if onlyIfAbsent {
		written, err := store.client.SetNX(context, key, value, ttl).Result()
		if err != nil {
			return false, storageError("set_nx", err)
		}
		return written, nil
	}

	if err := store.client.Set(context, key, value, ttl).Err(); err != nil {
		return false, storageError("set", err)
	}
	return true, nil
}

// IncrementBy adds delta to the counter at key and (re)applies ttl as its
// expiry. Both commands run inside a single MULTI/EXEC block; if either one
// fails the whole call fails and nothing is reported as applied.
func (store *Store) IncrementBy(context stdctx.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	var increment *redis.IntCmd
	var expire *redis.BoolCmd

	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		increment = pipe.IncrBy(context, key, delta)
		expire = pipe.Expire(context, key, ttl)
		return nil
	})
	if err != nil {
		return 0, storageError("increment_by", err)
	}

	if err := increment.Err(); err != nil {
		return 0, storageError("increment_by", err)
	}
	if err := expire.Err(); err != nil {
		return 0, storageError("increment_by_expire", err)
	}

	return increment.Val(), nil
}

// Delete removes key and returns the number of removed keys (0 or 1).
func (store *Store) Delete(context stdctx.Context, key string) (int64, error) {
	removed, err := store.client.Del(context, key).Result()
	if err != nil {
		return 0, storageError("delete", err)
	}
	return removed, nil
}

// TimeToLive returns the remaining lifetime of key and the absolute instant it
// expires at. A missing key, or a key without expiry, yields a zero duration.
func (store *Store) TimeToLive(context stdctx.Context, key string) (time.Duration, time.Time, error) {
	remaining, err := store.client.TTL(context, key).Result()
	if err != nil {
		return 0, time.Time{}, storageError("ttl", err)
	}

	// -1 (no expiry) and -2 (missing) come back as raw negative durations.
	if remaining < 0 {
		remaining = 0
	}

	return remaining, store.now().Add(remaining), nil
}

// Push prepends value to the list at queueKey and returns the new length.
func (store *Store) Push(context stdctx.Context, queueKey string, value string) (int64, error) {
	length, err := store.client.LPush(context, queueKey, value).Result()
	if err != nil {
		return 0, storageError("push", err)
	}
	return length, nil
}

func storageError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, operation, err)
}
