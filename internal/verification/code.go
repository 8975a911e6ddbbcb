// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package verification

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// # Alphabets

const (
	codeLetters  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeNumbers  = "0123456789"
	tokenSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

const (
	// CodeLength is the length of the human-enterable code (LLLNNNLLL).
	CodeLength = 9
	// TokenLength is the length of the opaque confirmation token.
	TokenLength = 32
)

var (
	// ErrCodeLength is returned for a code that is not exactly CodeLength long.
	ErrCodeLength = errors.New("verification: code must be 9 characters")
	// ErrCodeLetters is returned when positions 1-3 or 7-9 are not letters.
	ErrCodeLetters = errors.New("verification: code letters expected")
	// ErrCodeNumbers is returned when positions 4-6 are not digits.
	ErrCodeNumbers = errors.New("verification: code digits expected")
	// ErrTokenLength is returned for a token that is not exactly TokenLength long.
	ErrTokenLength = errors.New("verification: token must be 32 characters")
	// ErrTokenSymbols is returned when a token contains a non-alphanumeric character.
	ErrTokenSymbols = errors.New("verification: token has invalid characters")
)

// # Generators

// GenerateCode returns a fresh code in the 3 letters + 3 digits + 3 letters
// format, every character drawn uniformly from crypto/rand.
func GenerateCode() (string, error) {
	var builder strings.Builder
	builder.Grow(CodeLength)

	for _, group := range []string{codeLetters, codeNumbers, codeLetters} {
		if err := pick(&builder, group, 3); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}

// GenerateToken returns a fresh 32-character alphanumeric token.
func GenerateToken() (string, error) {
	var builder strings.Builder
	builder.Grow(TokenLength)

	if err := pick(&builder, tokenSymbols, TokenLength); err != nil {
		return "", err
	}
	return builder.String(), nil
}

func pick(builder *strings.Builder, alphabet string, count int) error {
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < count; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return nil
}

// # Format Checks

// ValidateCodeFormat checks length and per-position alphabet membership.
// Letters are accepted in either case.
func ValidateCodeFormat(code string) error {
	if len(code) != CodeLength {
		return ErrCodeLength
	}

	for i := 0; i < CodeLength; i++ {
		char := code[i]
		if char >= 'a' && char <= 'z' {
			char -= 'a' - 'A'
		}
		if i >= 3 && i < 6 {
			if !strings.ContainsRune(codeNumbers, rune(char)) {
				return ErrCodeNumbers
			}
			continue
		}
		if !strings.ContainsRune(codeLetters, rune(char)) {
			return ErrCodeLetters
		}
	}

	return nil
}

// ValidateTokenFormat checks that token is exactly 32 alphanumeric characters.
func ValidateTokenFormat(token string) error {
	if len(token) != TokenLength {
		return ErrTokenLength
	}
	for i := 0; i < len(token); i++ {
		if !strings.ContainsRune(tokenSymbols, rune(token[i])) {
			return ErrTokenSymbols
		}
	}
	return nil
}
