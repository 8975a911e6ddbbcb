// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certly/internal/platform/apperr"
	"github.com/taibuivan/certly/internal/platform/validate"
)

type confirmPayload struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Title string `json:"title" validate:"required,min=5"`
	Code  string `json:"code"  validate:"required,certcode"`
	Token string `json:"token" validate:"required,certtoken"`
}

/*
TestStruct checks tag rules and the JSON field names in the details.
*/
func TestStruct(t *testing.T) {
	valid := confirmPayload{
		Email: "a@x.com",
		Title: "Gift card",
		Code:  "abc123DEF",
		Token: "abcdefghijABCDEFGHIJ0123456789xy",
	}

	tests := []struct {
		name   string
		mutate func(*confirmPayload)
		field  string
	}{
		{"valid", func(*confirmPayload) {}, ""},
		{"bad email", func(p *confirmPayload) { p.Email = "not-an-email" }, "email"},
		{"short title", func(p *confirmPayload) { p.Title = "Gift" }, "title"},
		{"bad code", func(p *confirmPayload) { p.Code = "ABCDEFGHI" }, "code"},
		{"short token", func(p *confirmPayload) { p.Token = "abc" }, "token"},
		{"missing code", func(p *confirmPayload) { p.Code = "" }, "code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := valid
			tt.mutate(&payload)

			err := validate.Struct(payload)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeBadRequest, ae.Code)
			require.Len(t, ae.Details, 1)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		hasError bool
	}{
		{"valid_string", "create", false},
		{"empty_string", "", true},
		{"whitespace_only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required("type", tt.value)

			if tt.hasError {
				ae := apperr.As(v.Err())
				require.NotNil(t, ae)
				assert.Equal(t, apperr.CodeBadRequest, ae.Code)
				assert.Equal(t, "type", ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		OneOf("type", "rename", "create", "delete"). // Fails
		MinLen("name", "", 1).                        // Fails
		MaxLen("name", "ok", 10).
		Custom("id", true, "Required for delete"). // Fails
		Err()

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 3)
	assert.Equal(t, "Must be one of: create, delete", ae.Details[0].Message)
}
