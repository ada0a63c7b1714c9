// Package textnorm canonicalizes free-text company fields so that the same
// business reads the same way regardless of casing, accents, legal suffixes
// or stray whitespace in the source data.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Legal-entity suffixes are stripped from the end of a name only, as whole
// words. Matching mid-string would corrupt names like "Incorporated Solutions".
var entitySuffixes = regexp.MustCompile(
	`(?:\s+(?:inc|llc|ltd|corp|corporation|company|co|incorporated|limited)\.?)+$`,
)

const trailingPunct = `.,;:!?"')(`

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the canonical form of a free-text field: lowercased,
// accent-stripped, whitespace-collapsed, trailing legal-entity suffixes
// removed, trailing punctuation trimmed. Empty or whitespace-only input
// yields "".
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return ""
	}

	if stripped, _, err := transform.String(stripAccents, s); err == nil {
		s = stripped
	}

	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, trailingPunct)
	s = entitySuffixes.ReplaceAllString(s, "")
	s = strings.TrimRight(s, trailingPunct)

	return strings.TrimSpace(s)
}

// ParseCategories splits a comma-separated category tag list into its labels,
// trimming surrounding whitespace and dropping empties. Label case and order
// are preserved.
func ParseCategories(categories string) []string {
	if strings.TrimSpace(categories) == "" {
		return nil
	}

	parts := strings.Split(categories, ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}

	return labels
}
