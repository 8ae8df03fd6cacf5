// Package normalize provides small input-normalization helpers used by
// the stores and handlers before validation or persistence.
package normalize

import "strings"

// Email trims whitespace and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a role value for comparison against the
// closed role set.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims and lowercases a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
