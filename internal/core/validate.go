// Package core holds the domain records shared by the repositories,
// services and the HTTP layer, plus the input predicates the edge applies
// before anything reaches the store.
package core

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidEmail reports whether s has a plausible address shape. This is a
// client-side gate, not RFC validation.
func IsValidEmail(s string) bool {
	return s != "" && emailPattern.MatchString(s)
}

// IsValidPassword enforces the minimum length accepted at registration.
func IsValidPassword(s string) bool {
	return len(s) >= 6
}

// IsNotEmpty reports whether s contains anything beyond whitespace.
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
