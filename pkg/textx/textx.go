// Package textx provides small text utilities for documents read from files.
package textx

import (
	"strings"
	"unicode"
)

// SanitizeText drops a leading byte order mark and every control character
// except tab, newline and carriage return, then trims surrounding space.
func SanitizeText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\r', r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s))
}
