package classification

import (
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/match"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/policy"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/textnorm"
)

// Rule ids produced outside of guardrail patterns.
const (
	MatchEmptyText = "EMPTY_TEXT"
	MatchDefault   = "DEFAULT"
)

// PriorityClassifier applies the compiled policy to one message. It is
// stateless apart from the shared read-only policy and safe for concurrent
// use.
type PriorityClassifier struct {
	pol *policy.CompiledPolicy
}

// NewPriorityClassifier creates a priority classifier over a compiled policy.
func NewPriorityClassifier(pol *policy.CompiledPolicy) *PriorityClassifier {
	return &PriorityClassifier{pol: pol}
}

// Classify returns the priority level and the id of the rule that decided
// it. Evaluation order is fixed: P0 guardrails, P1 guardrails, then the
// P1/P2/P3 keyword lists, then the default. Guardrails outrank keywords
// because they encode compound danger signals a lone keyword cannot safely
// represent; a keyword match never escalates past an unmet guardrail.
func (c *PriorityClassifier) Classify(text string) (Level, string) {
	normed := textnorm.Normalize(text)
	if normed == "" {
		return P3, MatchEmptyText
	}

	for _, lvl := range []Level{P0, P1} {
		for _, pattern := range c.pol.Guardrails(lvl.String()) {
			if pattern.Matches(normed) {
				observability.GuardrailMatchCount.WithLabelValues(pattern.ID).Inc()
				observability.Debugf("Guardrail %s matched at %s", pattern.ID, lvl)
				return lvl, pattern.ID
			}
		}
	}

	for _, lvl := range []Level{P1, P2, P3} {
		compiled, ok := c.pol.Level(lvl.String())
		if !ok {
			continue
		}
		if match.AnyMatches(compiled.Keywords, normed) {
			return lvl, lvl.String() + "_KEYWORD"
		}
	}

	return P3, MatchDefault
}
