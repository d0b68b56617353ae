package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sanitize turns a feature declaration or free text into a class identifier:
// visibility markers and any type annotation are dropped, everything but
// letters, digits, underscores and spaces is removed, then words are
// title-cased and joined ("+first_name: String" becomes "FirstName").
func Sanitize(s string) string {
	s = strings.TrimLeft(s, "+-#~")
	if before, _, found := strings.Cut(s, ":"); found {
		s = strings.TrimSpace(before)
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ' ' {
			return r
		}
		return -1
	}, s)

	s = strings.ReplaceAll(s, "_", " ")
	return strings.ReplaceAll(titleWords(s), " ", "")
}

// titleWords upper-cases the first letter of every run of letters and
// lower-cases the rest. Digits end a run, so "user2fa" becomes "User2Fa".
func titleWords(s string) string {
	caser := cases.Title(language.Und)

	var b strings.Builder
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}

// ParseResponse extracts a class name from a model answer: surrounding
// quotes are stripped and only the first line is kept.
func ParseResponse(resp string) string {
	name := strings.TrimSpace(resp)
	name = strings.Trim(name, `"`)
	name = strings.Trim(name, `'`)
	if first, _, found := strings.Cut(name, "\n"); found {
		name = first
	}
	return Sanitize(strings.TrimSpace(name))
}
