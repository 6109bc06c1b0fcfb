// Package normalize canonicalizes user-supplied identifiers before they are
// stored or compared.
package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization trims surrounding whitespace and
// lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Role trims and lower-cases a directory role. An empty role is "patient",
// the role every freshly registered account gets.
func Role(r string) string {
	r = strings.ToLower(strings.TrimSpace(r))
	if r == "" {
		return "patient"
	}
	return r
}
