package utils

import "strings"

// Truncate is a simple string truncate
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// CollapseWhitespace folds every run of whitespace down to a single space and
// trims the ends
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
