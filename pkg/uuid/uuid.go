// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered identifiers for certificates.

Version 7 values sort by creation time, which keeps the certs primary key
index append-mostly.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7.
func New() uuid.UUID {
	// entropy failure is an unrecoverable system-level error
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id
}
