// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package verification_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/certly/internal/verification"
)

var (
	codePattern  = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}[A-Z]{3}$`)
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{32}$`)
)

/*
TestGenerate_Formats checks generator output shape over many draws.
*/
func TestGenerate_Formats(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		code, err := verification.GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.NoError(t, verification.ValidateCodeFormat(code))

		token, err := verification.GenerateToken()
		require.NoError(t, err)
		assert.Regexp(t, tokenPattern, token)
		assert.NoError(t, verification.ValidateTokenFormat(token))

		seen[token] = struct{}{}
	}

	// 62^32 possibilities; a collision here means the source is broken.
	assert.Len(t, seen, 200)
}

func TestValidateCodeFormat(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"valid", "ABC123DEF", nil},
		{"lowercase letters accepted", "abc123def", nil},
		{"too short", "ABC123DE", verification.ErrCodeLength},
		{"too long", "ABC123DEFG", verification.ErrCodeLength},
		{"empty", "", verification.ErrCodeLength},
		{"digit in letter block", "A1C123DEF", verification.ErrCodeLetters},
		{"letter in digit block", "ABC1X3DEF", verification.ErrCodeNumbers},
		{"symbol", "ABC123DE!", verification.ErrCodeLetters},
		{"multibyte", "ÄBC123DE", verification.ErrCodeLetters},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := verification.ValidateCodeFormat(tc.code)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateTokenFormat(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"valid", "abcdefghijABCDEFGHIJ0123456789xy", nil},
		{"short", "abc", verification.ErrTokenLength},
		{"symbol", "abcdefghijABCDEFGHIJ0123456789x-", verification.ErrTokenSymbols},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := verification.ValidateTokenFormat(tc.token)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
