// Package strings holds list helpers for comma-separated configuration values.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated value, trimming each element and
// dropping empties and repeats. Order is preserved; an empty input yields nil.
//
//	SplitList(" /api, /metrics,,/api ") // []string{"/api", "/metrics"}
func SplitList(v string) []string {
	return dedupe(strings.Split(v, ","), strings.TrimSpace)
}

// SplitListLower is SplitList for case-insensitive values such as origins and
// broker hosts.
func SplitListLower(v string) []string {
	return dedupe(strings.Split(v, ","), func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupe(values []string, norm func(string) string) []string {
	var out []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = norm(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
