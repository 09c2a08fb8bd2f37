package textutil

// Truncate shortens a string to maxLen, appending "..." if truncated.
// The cut lands on a rune boundary.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	cut := maxLen
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}

	return s[:cut] + "..."
}
