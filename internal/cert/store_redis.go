// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cert

import (
	"context"
	"time"

	"github.com/taibuivan/certly/internal/platform/constants"
)

// CacheStore is the subset of the key-value adapter used for cached stats.
type CacheStore interface {
	GetInt(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration, onlyIfAbsent bool) (bool, error)
	IncrementBy(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}

// StatsCache caches the certificate count for the public stats endpoint.
type StatsCache struct {
	kv CacheStore
}

// NewStatsCache creates a [StatsCache].
func NewStatsCache(kv CacheStore) *StatsCache {
	return &StatsCache{kv: kv}
}

// UsersCount returns the cached count, if any.
func (cache *StatsCache) UsersCount(context context.Context) (int64, bool, error) {
	return cache.kv.GetInt(context, constants.RedisKeyUsersCount)
}

// StoreUsersCount caches count unless a concurrent request already did.
func (cache *StatsCache) StoreUsersCount(context context.Context, count int64) error {
	_, err := cache.kv.Set(context, constants.RedisKeyUsersCount, count, constants.UsersCountTTL, true)
	return err
}

/*
AdjustUsersCount shifts the cached count by delta.

Nothing is written when no count is cached, so a missing key is never
replaced by a bare delta; the next read recounts from the database.
*/
func (cache *StatsCache) AdjustUsersCount(context context.Context, delta int64) error {
	_, found, err := cache.kv.GetInt(context, constants.RedisKeyUsersCount)
	if err != nil || !found {
		return err
	}

	_, err = cache.kv.IncrementBy(context, constants.RedisKeyUsersCount, delta, constants.UsersCountTTL)
	return err
}
