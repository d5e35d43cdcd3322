package classification

import (
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/match"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/textnorm"
)

// Category is the textual category of a message. The set is driven by the
// category rule config; "security" and "other" have fixed meaning.
type Category string

const (
	CategorySecurity Category = "security"
	CategoryOther    Category = "other"
)

// Category match ids produced outside of declared rules.
const (
	CatMatchEmptyText      = "CAT_EMPTY_TEXT"
	CatMatchDefault        = "CAT_DEFAULT"
	CatMatchForcedSecurity = "CAT_FORCED_SECURITY_P0"
)

type compiledCategoryRule struct {
	category Category
	id       string
	terms    []match.Matcher
}

// CategoryClassifier applies the ordered category rules: first rule whose
// term list matches wins, no scoring, no ties. Immutable after construction.
type CategoryClassifier struct {
	rules         []compiledCategoryRule
	forceSecurity map[string]bool
}

// NewCategoryClassifier compiles the category rules in declaration order.
func NewCategoryClassifier(cfg config.CategoryRulesConfig) *CategoryClassifier {
	c := &CategoryClassifier{
		rules:         make([]compiledCategoryRule, 0, len(cfg.Rules)),
		forceSecurity: make(map[string]bool, len(cfg.ForceSecurityRuleIDs)),
	}
	for _, r := range cfg.Rules {
		c.rules = append(c.rules, compiledCategoryRule{
			category: Category(r.Category),
			id:       r.ID,
			terms:    match.CompileTerms(r.Terms),
		})
	}
	for _, id := range cfg.ForceSecurityRuleIDs {
		c.forceSecurity[id] = true
	}
	return c
}

// Classify returns the first matching category and its rule id. Priority
// classification plays no part here; the forced-security override is applied
// separately by ApplyForcedSecurity.
func (c *CategoryClassifier) Classify(text string) (Category, string) {
	normed := textnorm.Normalize(text)
	if normed == "" {
		return CategoryOther, CatMatchEmptyText
	}

	for _, rule := range c.rules {
		if match.AnyMatches(rule.terms, normed) {
			return rule.category, rule.id
		}
	}

	return CategoryOther, CatMatchDefault
}

// ApplyForcedSecurity overrides the category to "security" when the priority
// rule id belongs to the configured life-safety guardrail set. Those
// triggers always route to the security handling path regardless of textual
// category cues.
func (c *CategoryClassifier) ApplyForcedSecurity(priorityRuleID string, cat Category, catMatch string) (Category, string) {
	if c.forceSecurity[priorityRuleID] {
		return CategorySecurity, CatMatchForcedSecurity
	}
	return cat, catMatch
}
