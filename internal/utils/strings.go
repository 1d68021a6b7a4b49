// Package utils provides common utility functions.
package utils

import "unicode/utf8"

// Truncate shortens s to at most n runes, appending "..." when cut.
// Use this to keep upstream error bodies out of log lines and messages.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
