// Package idcodec renders this module's numeric identifiers in their short
// display form and parses them back. Symbol ids are 64-bit hashes; encoding
// them in base 63 keeps the strings compact (at most 11 characters versus
// 16 for hex) while staying safe inside identifiers, URLs and JSON without
// escaping.
//
// Alphabet: A-Z (0-25), a-z (26-51), 0-9 (52-61), _ (62).
package idcodec

import (
	"errors"
	"fmt"
)

const (
	Base     = 63
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"
)

var (
	ErrEmptyString = errors.New("empty encoded string")
	ErrInvalidChar = errors.New("invalid character in encoded string")
	ErrOverflow    = errors.New("decoded value overflow")
)

// Encode encodes a uint64 value to a base-63 string. Zero encodes to "A",
// the minimum non-empty encoding.
func Encode(value uint64) string {
	if value == 0 {
		return "A"
	}

	// A uint64 needs at most 11 base-63 digits.
	var buf [11]byte
	pos := len(buf)
	for value > 0 {
		pos--
		buf[pos] = Alphabet[value%Base]
		value /= Base
	}
	return string(buf[pos:])
}

// Decode decodes a base-63 string to a uint64 value. Empty strings,
// characters outside the alphabet, and values exceeding 64 bits are errors.
func Decode(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, ErrEmptyString
	}

	var value uint64
	for _, c := range encoded {
		digit, err := charValue(c)
		if err != nil {
			return 0, err
		}
		if value > (^uint64(0)-digit)/Base {
			return 0, ErrOverflow
		}
		value = value*Base + digit
	}
	return value, nil
}

// IsValid reports whether encoded is a well-formed base-63 value.
func IsValid(encoded string) bool {
	if encoded == "" {
		return false
	}
	for _, c := range encoded {
		if _, err := charValue(c); err != nil {
			return false
		}
	}
	return true
}

func charValue(c rune) (uint64, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint64(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return uint64(c-'0') + 52, nil
	case c == '_':
		return 62, nil
	default:
		return 0, fmt.Errorf("%w: %c", ErrInvalidChar, c)
	}
}
