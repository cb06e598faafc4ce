package actions

import "strings"

// SplitList turns a comma-separated form value into a clean list:
// SplitList("a, b ,,c") is ["a" "b" "c"].
func SplitList(s string) []string {
	return CleanList(strings.Split(s, ","))
}

// CleanList trims every element and drops the empty ones. It never returns
// nil so the encoded field is always a JSON array.
func CleanList(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
