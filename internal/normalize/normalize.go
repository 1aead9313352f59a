// Package normalize canonicalizes noisy announcement text so it can be
// compared against the controlled geo-tag vocabulary. Source pages mix
// non-breaking spaces, dash variants, and precomposed/decomposed diacritics
// freely; matching happens on the canonical form only.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// folder performs full Unicode case folding, not a naive lowercase.
// cases.Fold is safe for concurrent use.
var folder = cases.Fold()

// isDash reports whether r is any of the dash-like code points seen in
// source markup: hyphen, non-breaking hyphen, figure dash, en/em dash,
// horizontal bar, minus sign.
func isDash(r rune) bool {
	switch r {
	case '-', '‐', '‑', '‒', '–', '—', '―', '−':
		return true
	}
	return false
}

// Text canonicalizes s for matching. The transformation is idempotent:
// whitespace variants become ordinary spaces, dash variants become an ASCII
// hyphen, whitespace runs collapse to one space, spaces adjacent to a hyphen
// are removed (so "A - B" equals "A-B"), the result is NFKC-composed and
// case-folded.
func Text(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case isDash(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	out = strings.ReplaceAll(out, " -", "-")
	out = strings.ReplaceAll(out, "- ", "-")

	return folder.String(norm.NFKC.String(out))
}

// ContainsVariant reports whether the canonical form of needle occurs as a
// substring of the canonical form of haystack.
func ContainsVariant(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(Text(haystack), Text(needle))
}

// Tokens splits the canonical form of s on single spaces. Used for
// standalone-token matching of short numeric unit names, where plain
// substring search would false-positive ("12" inside "112").
func Tokens(s string) []string {
	t := Text(s)
	if t == "" {
		return nil
	}
	return strings.Split(t, " ")
}

// ContainsToken reports whether tok appears as a standalone token in s.
func ContainsToken(s, tok string) bool {
	if tok == "" {
		return false
	}
	want := Text(tok)
	for _, t := range Tokens(s) {
		if t == want {
			return true
		}
	}
	return false
}

// ContainsPhrase reports whether phrase occurs on word boundaries in the
// tokenized form of s, compared literally (no case folding). Both sides are
// tokenized identically, so a hyphenated tag matches its hyphenated or
// spaced spelling in the text. Sources that reliably title-case place names
// are matched this way; see Capitalize and Upper for the variants tested.
func ContainsPhrase(s, phrase string) bool {
	want := tokenizeLiteral(phrase)
	if len(want) == 0 {
		return false
	}
	tokens := tokenizeLiteral(s)
	if len(tokens) == 0 {
		return false
	}
	joined := " " + strings.Join(tokens, " ") + " "
	return strings.Contains(joined, " "+strings.Join(want, " ")+" ")
}

// tokenizeLiteral splits s into tokens preserving case, treating whitespace,
// commas, and dash variants as separators.
func tokenizeLiteral(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || isDash(r)
	})
}

// Capitalize upper-cases the leading letter of every word in tag, where a
// word starts at the beginning or after any non-letter. "m.iž" becomes
// "M.Iž", "staroj novalji" becomes "Staroj Novalji".
func Capitalize(tag string) string {
	var b strings.Builder
	b.Grow(len(tag))
	prevLetter := false
	for _, r := range tag {
		if unicode.IsLetter(r) && !prevLetter {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// Upper returns the all-uppercase form of tag. "žman" becomes "ŽMAN".
func Upper(tag string) string {
	return strings.ToUpper(tag)
}
