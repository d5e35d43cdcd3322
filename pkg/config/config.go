// Package config loads and validates the triage configuration: the priority
// policy, category rules, retrieval settings and generation settings.
package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration wraps every compile-time configuration failure. A bad
// policy aborts the whole classification phase, so callers treat any error
// matching this sentinel as fatal to the batch.
var ErrConfiguration = errors.New("configuration error")

// KnownLevels lists the priority levels, in severity order.
var KnownLevels = []string{"P0", "P1", "P2", "P3"}

// TriageConfig is the root configuration structure.
type TriageConfig struct {
	Policy        PolicyConfig        `yaml:"policy"`
	CategoryRules CategoryRulesConfig `yaml:"category_rules"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Generation    GenerationConfig    `yaml:"generation"`
}

// PolicyConfig holds the per-level keyword lists and guardrail patterns.
type PolicyConfig struct {
	Levels     map[string]LevelConfig `yaml:"levels"`
	Guardrails GuardrailsConfig       `yaml:"guardrails"`
}

// LevelConfig describes one priority level. SLA action targets come in
// level-specific units in the source policy; the compiler normalizes all of
// them to minutes.
type LevelConfig struct {
	Label            string   `yaml:"label"`
	SLAResponseMin   int      `yaml:"sla_response_min"`
	SLAActionMin     int      `yaml:"sla_action_min,omitempty"`
	SLAActionHours   int      `yaml:"sla_action_hours,omitempty"`
	SLAActionDays    int      `yaml:"sla_action_days,omitempty"`
	Keywords         []string `yaml:"keywords"`
	ResponseTemplate string   `yaml:"response_template,omitempty"`
}

// GuardrailsConfig holds ordered guardrail patterns per level.
type GuardrailsConfig struct {
	Patterns map[string][]GuardrailPattern `yaml:"patterns"`
}

// GuardrailPattern is a boolean combinator over terms. All listed clause
// kinds must hold; a clause kind that is absent imposes no constraint.
type GuardrailPattern struct {
	ID          string     `yaml:"id"`
	Explanation string     `yaml:"explanation,omitempty"`
	All         []string   `yaml:"all,omitempty"`
	Any         []string   `yaml:"any,omitempty"`
	AnyGroup    [][]string `yaml:"any_group,omitempty"`
}

// CategoryRulesConfig holds the ordered category rules and the guardrail
// ids whose match forces the final category to "security".
type CategoryRulesConfig struct {
	ForceSecurityRuleIDs []string       `yaml:"force_security_rule_ids"`
	Rules                []CategoryRule `yaml:"rules"`
}

// CategoryRule maps one category to a list of terms; declaration order is
// evaluation order, first match wins.
type CategoryRule struct {
	Category string   `yaml:"category"`
	ID       string   `yaml:"id"`
	Terms    []string `yaml:"terms"`
}

// RetrievalConfig holds context retrieval settings.
type RetrievalConfig struct {
	TopK                int               `yaml:"top_k"`
	ContextSeparator    string            `yaml:"context_separator,omitempty"`
	ForcedDocByLevel    map[string]string `yaml:"forced_doc_by_level"`
	ForcedDocByCategory map[string]string `yaml:"forced_doc_by_category"`
	LevelBoost          float64           `yaml:"level_boost,omitempty"`
	CategoryBoost       float64           `yaml:"category_boost,omitempty"`
	Embedding           EmbeddingConfig   `yaml:"embedding"`
}

// EmbeddingConfig points at the OpenAI-compatible embedding endpoint backing
// the nearest-neighbor index.
type EmbeddingConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// GenerationConfig holds draft generation settings.
type GenerationConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Model           string `yaml:"model"`
	Workers         int    `yaml:"workers,omitempty"`
	MaxRetries      int    `yaml:"max_retries,omitempty"`
	RetryBackoffMS  int    `yaml:"retry_backoff_ms,omitempty"`
	TimeoutSeconds  int    `yaml:"timeout_seconds,omitempty"`
	MaxTextChars    int    `yaml:"max_text_chars,omitempty"`
	MaxContextChars int    `yaml:"max_context_chars,omitempty"`
	MaxRequiredInfo int    `yaml:"max_required_info,omitempty"`
	LogEvery        int    `yaml:"log_every,omitempty"`
}

// ApplyDefaults fills in default values for unset fields.
func (c *TriageConfig) ApplyDefaults() {
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.ContextSeparator == "" {
		c.Retrieval.ContextSeparator = "\n\n---\n\n"
	}
	if c.Retrieval.LevelBoost == 0 {
		c.Retrieval.LevelBoost = 1.2
	}
	if c.Retrieval.CategoryBoost == 0 {
		c.Retrieval.CategoryBoost = 1.3
	}

	if c.Generation.Workers <= 0 {
		c.Generation.Workers = 2
	}
	if c.Generation.MaxRetries <= 0 {
		c.Generation.MaxRetries = 1
	}
	if c.Generation.RetryBackoffMS <= 0 {
		c.Generation.RetryBackoffMS = 600
	}
	if c.Generation.TimeoutSeconds <= 0 {
		c.Generation.TimeoutSeconds = 90
	}
	if c.Generation.MaxTextChars <= 0 {
		c.Generation.MaxTextChars = 900
	}
	if c.Generation.MaxContextChars <= 0 {
		c.Generation.MaxContextChars = 1500
	}
	if c.Generation.MaxRequiredInfo <= 0 {
		c.Generation.MaxRequiredInfo = 8
	}
	if c.Generation.LogEvery <= 0 {
		c.Generation.LogEvery = 1
	}

	if len(c.CategoryRules.ForceSecurityRuleIDs) == 0 {
		c.CategoryRules.ForceSecurityRuleIDs = []string{"P0_GAS", "P0_FIRE"}
	}
}

// Validate checks the configuration for structural errors. Every returned
// error wraps ErrConfiguration.
//
// A missing levels or guardrails section is a hard failure rather than
// "no rules at that level": a policy file that silently classifies
// everything as P3 is worse than one that refuses to load.
func (c *TriageConfig) Validate() error {
	if c.Policy.Levels == nil {
		return fmt.Errorf("%w: policy.levels section is missing", ErrConfiguration)
	}
	for _, lvl := range KnownLevels {
		if _, ok := c.Policy.Levels[lvl]; !ok {
			return fmt.Errorf("%w: policy.levels is missing level %s", ErrConfiguration, lvl)
		}
	}
	for lvl := range c.Policy.Levels {
		if !isKnownLevel(lvl) {
			return fmt.Errorf("%w: policy.levels has unknown level %q", ErrConfiguration, lvl)
		}
	}

	if c.Policy.Guardrails.Patterns == nil {
		return fmt.Errorf("%w: policy.guardrails.patterns section is missing", ErrConfiguration)
	}
	for lvl, patterns := range c.Policy.Guardrails.Patterns {
		if !isKnownLevel(lvl) {
			return fmt.Errorf("%w: guardrails.patterns has unknown level %q", ErrConfiguration, lvl)
		}
		for i, p := range patterns {
			if p.ID == "" {
				return fmt.Errorf("%w: guardrail pattern %d at level %s has no id", ErrConfiguration, i, lvl)
			}
			if len(p.All) == 0 && len(p.Any) == 0 && len(p.AnyGroup) == 0 {
				return fmt.Errorf("%w: guardrail pattern %s has no clauses", ErrConfiguration, p.ID)
			}
		}
	}

	if len(c.CategoryRules.Rules) == 0 {
		return fmt.Errorf("%w: category_rules.rules section is missing or empty", ErrConfiguration)
	}
	seen := make(map[string]bool, len(c.CategoryRules.Rules))
	for i, r := range c.CategoryRules.Rules {
		if r.Category == "" {
			return fmt.Errorf("%w: category rule %d has no category", ErrConfiguration, i)
		}
		if r.ID == "" {
			return fmt.Errorf("%w: category rule %q has no id", ErrConfiguration, r.Category)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate category rule id %q", ErrConfiguration, r.ID)
		}
		seen[r.ID] = true
		if len(r.Terms) == 0 {
			return fmt.Errorf("%w: category rule %q has no terms", ErrConfiguration, r.ID)
		}
	}

	for lvl := range c.Retrieval.ForcedDocByLevel {
		if !isKnownLevel(lvl) {
			return fmt.Errorf("%w: retrieval.forced_doc_by_level has unknown level %q", ErrConfiguration, lvl)
		}
	}

	return nil
}

func isKnownLevel(lvl string) bool {
	for _, known := range KnownLevels {
		if lvl == known {
			return true
		}
	}
	return false
}
