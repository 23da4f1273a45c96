package utils

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}

// SafeText drops invalid UTF-8 and control characters other than newlines and tabs.
func SafeText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}
