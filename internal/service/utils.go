package service

import "strings"

// cleanText trims s and drops invalid UTF-8 sequences, which PostgreSQL
// rejects. Category names arrive from clients with emoji prefixes.
func cleanText(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}
