// Package strings holds small string helpers shared by config and handlers.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated setting such as
// "http://a.example, http://b.example" into trimmed, unique, non-empty
// entries. Order is preserved.
func SplitList(s string) []string {
	return DedupeAndTrim(strings.Split(s, ","))
}

// DedupeAndTrim removes duplicates and blanks, trimming each element. It
// returns nil when nothing is left.
func DedupeAndTrim(values []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
