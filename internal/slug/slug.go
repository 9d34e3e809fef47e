// Package slug builds URL-safe restaurant identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// \s alone is ASCII only; \p{Z} adds NBSP, ideographic space and friends.
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)
	invalidRe    = regexp.MustCompile(`[^a-z0-9-]+`)
	dashesRe     = regexp.MustCompile(`-{2,}`)
)

// Derive turns a display name into a slug: "Café  Sol!" -> "cafe-sol".
// The result may be empty when name has no latin letters or digits.
func Derive(name string) string {
	s := strings.ToLower(name)
	s = stripAccents(s)
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = invalidRe.ReplaceAllString(s, "")
	s = dashesRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether a client supplied slug can be used as a single path
// segment. Anything else is kept verbatim, so "el_rincon" is fine.
func Valid(s string) bool {
	if s == "" || strings.ContainsAny(s, "/?#") {
		return false
	}
	return !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) || unicode.IsControl(r)
	})
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
