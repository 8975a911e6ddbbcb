// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package shortid renders UUIDs as 22-character flickr-base58 strings.

Short ids appear in recovery emails and public certificate links. The
encoding is the one used by the short-uuid family of libraries: big-endian
base58 over the 128-bit value, left-padded with the zero digit '1' to a
constant length. Parsing accepts either form so old links keep working.
*/
package shortid

import (
	"errors"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Alphabet is the flickr base58 alphabet (no 0, O, I, l).
	Alphabet = "123456789abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

	// Length is the fixed length of an encoded id.
	Length = 22
)

// ErrInvalid is returned for input that is neither a short id nor a UUID.
var ErrInvalid = errors.New("shortid: invalid id")

var (
	base     = big.NewInt(int64(len(Alphabet)))
	maxValue = new(big.Int).Lsh(big.NewInt(1), 128)
)

// Encode returns the short form of id.
func Encode(id uuid.UUID) string {
	value := new(big.Int).SetBytes(id[:])
	remainder := new(big.Int)

	digits := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		value.DivMod(value, base, remainder)
		digits[i] = Alphabet[remainder.Int64()]
	}
	return string(digits)
}

// Decode parses a 22-character short id.
func Decode(short string) (uuid.UUID, error) {
	if len(short) != Length {
		return uuid.Nil, ErrInvalid
	}

	value := new(big.Int)
	for i := 0; i < len(short); i++ {
		digit := strings.IndexByte(Alphabet, short[i])
		if digit < 0 {
			return uuid.Nil, ErrInvalid
		}
		value.Mul(value, base)
		value.Add(value, big.NewInt(int64(digit)))
	}
	if value.Cmp(maxValue) >= 0 {
		return uuid.Nil, ErrInvalid
	}

	var id uuid.UUID
	value.FillBytes(id[:])
	return id, nil
}

// Parse accepts a short id or a canonical UUID string, surrounding
// whitespace ignored.
func Parse(raw string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(raw)

	if id, err := Decode(trimmed); err == nil {
		return id, nil
	}
	if id, err := uuid.Parse(strings.ToLower(trimmed)); err == nil {
		return id, nil
	}
	return uuid.Nil, ErrInvalid
}
