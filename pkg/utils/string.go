package utils

// Truncate shortens s to at most maxLen bytes, marking the cut with an
// ellipsis.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
