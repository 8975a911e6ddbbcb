// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cert manages gift certificates whose creation and deletion are
confirmed by a code mailed to the owner.

Flow:

 1. POST /send_code issues a code for a purpose (create or delete) and
    returns the matching token.
 2. POST /cert or DELETE /cert presents email, token and code; the pending
    verification is consumed and the certificate is written or removed.

Anyone holding the short id can view a certificate. Only the mailbox owner
can create or delete one.
*/
package cert

import (
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/certly/pkg/shortid"
)

// Cert is one issued certificate. Email is unique across certificates.
type Cert struct {
	ID        uuid.UUID `json:"-"`
	Email     string    `json:"-"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"-"`
}

// ShortID returns the public identifier printed on the certificate.
func (c *Cert) ShortID() string {
	return shortid.Encode(c.ID)
}

// View is the public projection of a certificate.
type View struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// View projects c for API responses.
func (c *Cert) View() View {
	return View{ID: c.ShortID(), Name: c.Name, Title: c.Title}
}

// # Field Names

const (
	FieldEmail   = "email"
	FieldName    = "name"
	FieldTitle   = "title"
	FieldCode    = "code"
	FieldToken   = "token"
	FieldID      = "id"
	FieldPurpose = "type"
)

// # Limits

const (
	MinTitleLength = 5
	MaxTitleLength = 128
	MaxNameLength  = 128
)

// # Routes

const (
	RouteCreate = "POST /api/v1/cert"
	RouteDelete = "DELETE /api/v1/cert"
)
