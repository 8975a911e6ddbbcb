// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mailqueue publishes outbound email jobs for the mail worker.

Each job is a JSON [Task] pushed onto the head of a Redis list; the worker
pops from the tail, so delivery is FIFO. Templates are chosen by purpose and
filled in from the replacements map.
*/
package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultQueueKey is the list the mail worker consumes.
const DefaultQueueKey = "email_jobs"

// # Template Purposes

const (
	PurposeCreate = "create"
	PurposeDelete = "delete"
	PurposeForgot = "forgot"
)

// # Placeholders

const (
	// PlaceholderCode is replaced with the confirmation code.
	PlaceholderCode = "CERTCODE"
	// PlaceholderCertID is replaced with the short certificate id.
	PlaceholderCertID = "CERTID"
)

// Task is one email job as seen by the worker.
type Task struct {
	Purpose      string            `json:"purpose"`
	Email        string            `json:"email"`
	Replacements map[string]string `json:"replacements"`
}

// Pusher is the list operation of the key-value adapter.
type Pusher interface {
	Push(ctx context.Context, key string, value string) (int64, error)
}

// Emitter serializes tasks and pushes them onto the queue.
type Emitter struct {
	pusher   Pusher
	queueKey string
}

// NewEmitter creates an [Emitter]. An empty queueKey selects [DefaultQueueKey].
func NewEmitter(pusher Pusher, queueKey string) *Emitter {
	if queueKey == "" {
		queueKey = DefaultQueueKey
	}
	return &Emitter{pusher: pusher, queueKey: queueKey}
}

// Enqueue pushes an arbitrary task.
func (emitter *Emitter) Enqueue(context context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("mail_task_encode_failed: %w", err)
	}

	if _, err := emitter.pusher.Push(context, emitter.queueKey, string(payload)); err != nil {
		return fmt.Errorf("mail_task_push_failed: %w", err)
	}
	return nil
}

// SendCreateCode queues the confirmation code for a new certificate.
func (emitter *Emitter) SendCreateCode(context context.Context, email, code string) error {
	return emitter.Enqueue(context, Task{
		Purpose:      PurposeCreate,
		Email:        email,
		Replacements: map[string]string{PlaceholderCode: code},
	})
}

// SendDeleteCode queues the confirmation code for deleting a certificate.
func (emitter *Emitter) SendDeleteCode(context context.Context, email, code string) error {
	return emitter.Enqueue(context, Task{
		Purpose:      PurposeDelete,
		Email:        email,
		Replacements: map[string]string{PlaceholderCode: code},
	})
}

// SendForgotCert queues a reminder carrying the certificate's short id.
func (emitter *Emitter) SendForgotCert(context context.Context, email, certID string) error {
	return emitter.Enqueue(context, Task{
		Purpose:      PurposeForgot,
		Email:        email,
		Replacements: map[string]string{PlaceholderCertID: certID},
	})
}
