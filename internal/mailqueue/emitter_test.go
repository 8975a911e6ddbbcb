// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailqueue_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certly/internal/mailqueue"
	redisstore "github.com/taibuivan/certly/internal/platform/redis"
)

func newTestEmitter(t *testing.T, queueKey string) (*miniredis.Miniredis, *mailqueue.Emitter) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, mailqueue.NewEmitter(redisstore.NewStore(client), queueKey)
}

func popTask(t *testing.T, mr *miniredis.Miniredis, key string) mailqueue.Task {
	t.Helper()

	raw, err := mr.Pop(key)
	require.NoError(t, err)

	var task mailqueue.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &task))
	return task
}

func TestEmitter_Tasks(t *testing.T) {
	tests := []struct {
		name string
		send func(*mailqueue.Emitter) error
		want mailqueue.Task
	}{
		{
			name: "create code",
			send: func(e *mailqueue.Emitter) error { return e.SendCreateCode(context.Background(), "a@x.com", "ABC123DEF") },
			want: mailqueue.Task{Purpose: "create", Email: "a@x.com", Replacements: map[string]string{"CERTCODE": "ABC123DEF"}},
		},
		{
			name: "delete code",
			send: func(e *mailqueue.Emitter) error { return e.SendDeleteCode(context.Background(), "a@x.com", "XYZ789QRS") },
			want: mailqueue.Task{Purpose: "delete", Email: "a@x.com", Replacements: map[string]string{"CERTCODE": "XYZ789QRS"}},
		},
		{
			name: "forgot",
			send: func(e *mailqueue.Emitter) error { return e.SendForgotCert(context.Background(), "a@x.com", "mhvXdrZT4jP5T8vBxuvm75") },
			want: mailqueue.Task{Purpose: "forgot", Email: "a@x.com", Replacements: map[string]string{"CERTID": "mhvXdrZT4jP5T8vBxuvm75"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mr, emitter := newTestEmitter(t, "")
			require.NoError(t, tc.send(emitter))
			assert.Equal(t, tc.want, popTask(t, mr, mailqueue.DefaultQueueKey))
		})
	}
}

/*
TestEmitter_WireFormat pins the JSON field names the worker reads.
*/
func TestEmitter_WireFormat(t *testing.T) {
	mr, emitter := newTestEmitter(t, "jobs")
	require.NoError(t, emitter.SendCreateCode(context.Background(), "a@x.com", "ABC123DEF"))

	items, err := mr.List("jobs")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"purpose":"create","email":"a@x.com","replacements":{"CERTCODE":"ABC123DEF"}}`, items[0])
}

/*
TestEmitter_Order verifies that the oldest task sits at the tail.
*/
func TestEmitter_Order(t *testing.T) {
	mr, emitter := newTestEmitter(t, "")
	ctx := context.Background()

	require.NoError(t, emitter.SendCreateCode(ctx, "first@x.com", "AAA111AAA"))
	require.NoError(t, emitter.SendCreateCode(ctx, "second@x.com", "BBB222BBB"))

	assert.Equal(t, "first@x.com", popTask(t, mr, mailqueue.DefaultQueueKey).Email)
}

func TestEmitter_BrokerDown(t *testing.T) {
	mr, emitter := newTestEmitter(t, "")
	mr.Close()

	err := emitter.SendForgotCert(context.Background(), "a@x.com", "id")
	assert.ErrorIs(t, err, redisstore.ErrStorage)
}
