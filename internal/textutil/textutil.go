// Package textutil holds the case handling shared by list filters and input
// normalisation.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var fold = cases.Fold()

// ContainsFold reports whether any field contains query, ignoring case.
// An empty query matches everything.
func ContainsFold(query string, fields ...string) bool {
	q := fold.String(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(fold.String(f), q) {
			return true
		}
	}
	return false
}

// EqualFold reports whether a and b are equal under full Unicode case folding.
func EqualFold(a, b string) bool {
	return fold.String(a) == fold.String(b)
}

// Name trims, collapses inner whitespace and title-cases a personal name.
func Name(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.Und, cases.NoLower).String(strings.ToLower(s))
}

// Email normalises an address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
