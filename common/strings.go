package common

import (
	"bytes"
	"strings"
)

func StringReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}

// NormalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := map[string]bool{}
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		n := strings.ToLower(strings.TrimSpace(t))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}

// TagsIntersect reports whether the two tag sets share at least one tag, ignoring case.
func TagsIntersect(a, b []string) bool {
	set := map[string]bool{}
	for _, t := range NormalizeTags(a) {
		set[t] = true
	}
	for _, t := range NormalizeTags(b) {
		if set[t] {
			return true
		}
	}
	return false
}
