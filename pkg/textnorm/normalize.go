// Package textnorm canonicalizes raw resident message text into the
// matching-safe form every rule matcher operates on.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// apostrophes unifies curly, backtick and acute apostrophe variants so that
// "d’eau", "d`eau" and "d´eau" all match a term written with a plain '.
var apostrophes = strings.NewReplacer(
	"’", "'", // right single quotation mark
	"‘", "'", // left single quotation mark
	"`", "'",
	"´", "'", // acute accent
)

// Normalize lower-cases the input, unifies apostrophes, strips accents via
// canonical decomposition, replaces everything outside [a-z0-9 '-] with a
// space and collapses whitespace. It is pure and idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = apostrophes.Replace(s)

	// NFKD decomposition followed by combining-mark removal makes
	// "électricité" and "electricite" identical. The transformer chain is
	// stateful, so it is built per call rather than shared.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
