package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanToValidUTF8 strips invalid UTF-8 sequences and NUL bytes from s.
func CleanToValidUTF8(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, 0) {
		return s
	}
	cleaned := strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(cleaned, "\x00", "")
}

// SafeText collapses repeated whitespace and trims the result.
func SafeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ContainsString reports whether target appears in list.
func ContainsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

// TruncateString cuts s to at most n bytes without splitting a rune.
func TruncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
