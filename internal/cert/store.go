// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cert

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the relational store of certificates.
// Lookups of absent rows return dberr.ErrNotFound.
type Repository interface {
	Create(context context.Context, c *Cert) error
	FindByID(context context.Context, id uuid.UUID) (*Cert, error)
	FindByEmail(context context.Context, email string) (*Cert, error)
	DeleteByEmail(context context.Context, email string) (*Cert, error)
	Count(context context.Context) (int64, error)
}
