// Package transform provides the pure, reversible text primitives used to
// decode obfuscated stream payloads. Every function is stateless and
// deterministic; composing them into a provider-specific pipeline is the
// resolver's job.
package transform

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// RotateLetters rotates each alphabetic rune by n positions within its
// case-preserving alphabet, wrapping. Non-letters pass through unchanged.
// With n=13 the transform is self-inverse.
func RotateLetters(s string, n int) string {
	rotate := func(r rune, base rune) rune {
		return base + (r-base+rune(n))%26
	}

	// Normalize n into [0, 26) so negative rotations work.
	n = ((n % 26) + 26) % 26

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(rotate(r, 'A'))
		case r >= 'a' && r <= 'z':
			b.WriteRune(rotate(r, 'a'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripMarkers removes every occurrence of each literal marker from s, in
// the order the markers are given. Safe only while markers never occur in
// legitimate payload content.
func StripMarkers(s string, markers ...string) string {
	for _, marker := range markers {
		s = strings.ReplaceAll(s, marker, "")
	}
	return s
}

// DecodeBase64 decodes a standard-alphabet base64 string. Malformed input
// (invalid characters, broken padding) is an error.
func DecodeBase64(s string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return string(decoded), nil
}

// CleanBase64 drops every rune outside the standard base64 alphabet and
// repairs the padding. Obfuscated payloads arrive with junk runes and
// truncated padding; cleaning before decoding mirrors what the provider's
// own player script does.
func CleanBase64(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9',
			r == '+', r == '/', r == '=':
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if rem := len(cleaned) % 4; rem != 0 {
		cleaned += strings.Repeat("=", 4-rem)
	}
	return cleaned
}

// ShiftRunes adds offset to each rune's code point. A rune whose shifted
// value would be negative is left unchanged; there is no wrapping. This
// matches the provider's scheme exactly and must not be "fixed".
func ShiftRunes(s string, offset int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		shifted := int(r) + offset
		if shifted >= 0 {
			b.WriteRune(rune(shifted))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Reverse reverses the full rune sequence. Self-inverse.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
