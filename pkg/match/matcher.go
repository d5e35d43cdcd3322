// Package match compiles policy terms into boundary-safe matchers over
// normalized text.
package match

import (
	"regexp"
	"strings"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/textnorm"
)

// Matcher tests whether a single compiled term is present in normalized
// text. The zero value never matches.
type Matcher struct {
	term string
	re   *regexp.Regexp
}

// CompileTerm normalizes the term with the same normalization applied to
// message text and compiles it into a safe pattern:
//
//   - A term with internal spaces is a phrase: the literal word sequence
//     must appear with one-or-more whitespace between components and word
//     boundaries at both ends.
//   - A single token requires word boundaries on both sides, so "eau"
//     never matches inside "tableau".
//
// An empty term compiles to a matcher that never matches.
func CompileTerm(term string) Matcher {
	normed := textnorm.Normalize(term)
	if normed == "" {
		return Matcher{}
	}

	var pattern string
	if strings.Contains(normed, " ") {
		parts := strings.Fields(normed)
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		pattern = `\b` + strings.Join(parts, `\s+`) + `\b`
	} else {
		pattern = `\b` + regexp.QuoteMeta(normed) + `\b`
	}

	// The pattern is built from a quoted literal, so compilation cannot
	// fail on well-formed input.
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Matcher{term: normed}
	}

	return Matcher{term: normed, re: re}
}

// Matches reports whether the term is present in the already-normalized
// text. Callers are expected to pass textnorm.Normalize output.
func (m Matcher) Matches(normText string) bool {
	if m.re == nil {
		return false
	}
	return m.re.MatchString(normText)
}

// Term returns the normalized term this matcher was compiled from.
func (m Matcher) Term() string {
	return m.term
}

// CompileTerms compiles a list of terms, dropping entries that normalize to
// the empty string.
func CompileTerms(terms []string) []Matcher {
	out := make([]Matcher, 0, len(terms))
	for _, t := range terms {
		m := CompileTerm(t)
		if m.Term() == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// AnyMatches reports whether at least one matcher in the list matches.
func AnyMatches(matchers []Matcher, normText string) bool {
	for _, m := range matchers {
		if m.Matches(normText) {
			return true
		}
	}
	return false
}
