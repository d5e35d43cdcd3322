package classification

import (
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/policy"
)

// Result is the classification attached to a message. Downstream stages
// treat it as ground truth: the generation stage consults it but never
// rewrites level or category.
type Result struct {
	Level            Level
	RuleMatch        string
	Category         Category
	CategoryMatch    string
	IsUrgent         bool
	SLATargetMinutes int
	AssignedTo       Role
}

// Classifier combines the priority and category classifiers and applies the
// forced-security override. One instance is shared by all workers.
type Classifier struct {
	priority *PriorityClassifier
	category *CategoryClassifier
}

// NewClassifier builds a classifier from a compiled policy and the category
// rule config.
func NewClassifier(pol *policy.CompiledPolicy, cats config.CategoryRulesConfig) *Classifier {
	return &Classifier{
		priority: NewPriorityClassifier(pol),
		category: NewCategoryClassifier(cats),
	}
}

// Classify runs both classifiers on the raw message text and derives the
// fixed-table fields from the level.
func (c *Classifier) Classify(text string) Result {
	level, ruleMatch := c.priority.Classify(text)
	cat, catMatch := c.category.Classify(text)
	cat, catMatch = c.category.ApplyForcedSecurity(ruleMatch, cat, catMatch)

	observability.ClassificationCount.WithLabelValues(level.String(), string(cat)).Inc()

	return Result{
		Level:            level,
		RuleMatch:        ruleMatch,
		Category:         cat,
		CategoryMatch:    catMatch,
		IsUrgent:         level.IsUrgent(),
		SLATargetMinutes: level.SLAMinutes(),
		AssignedTo:       level.AssignedRole(),
	}
}
