// Package strings provides string list helpers for configuration parsing.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element and drops blanks and repeats,
// preserving first-seen order. It returns nil when nothing survives.
func DedupeAndTrim(values []string) []string {
	var result []string
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// SplitList parses a comma separated value such as "a:9092, b:9092".
func SplitList(raw string) []string {
	return DedupeAndTrim(strings.Split(raw, ","))
}
