// Package policy compiles the raw priority policy into an immutable runtime
// structure of pre-normalized, pre-compiled matchers. Compilation happens
// once per run; the compiled policy is read-only and safe for unsynchronized
// concurrent use by classification workers.
package policy

import (
	"fmt"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/match"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

// CompiledPattern is a guardrail pattern with every term compiled. A
// pattern matches when all present clause kinds hold; absent clauses are
// vacuously true. Evaluation needs no state beyond the pattern and text.
type CompiledPattern struct {
	ID          string
	Explanation string
	All         []match.Matcher
	Any         []match.Matcher
	AnyGroup    [][]match.Matcher
}

// Matches evaluates the pattern against normalized text.
func (p *CompiledPattern) Matches(normText string) bool {
	for _, m := range p.All {
		if !m.Matches(normText) {
			return false
		}
	}
	if len(p.Any) > 0 && !match.AnyMatches(p.Any, normText) {
		return false
	}
	for _, group := range p.AnyGroup {
		if !match.AnyMatches(group, normText) {
			return false
		}
	}
	return true
}

// CompiledLevel holds one priority level's compiled keyword list and its
// SLA targets normalized to minutes.
type CompiledLevel struct {
	Name               string
	Label              string
	SLAResponseMinutes int
	SLAActionMinutes   int
	Keywords           []match.Matcher
	ResponseTemplate   string
}

// CompiledPolicy is the immutable runtime policy. Guardrail pattern order
// and keyword order follow declaration order in the config.
type CompiledPolicy struct {
	levels     map[string]CompiledLevel
	guardrails map[string][]CompiledPattern
}

// Compile builds a CompiledPolicy from the raw policy config. It returns a
// new structure and leaves the input untouched. The config must already
// have passed config.Validate; Compile still guards against levels it does
// not know about.
func Compile(cfg *config.PolicyConfig) (*CompiledPolicy, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil policy", config.ErrConfiguration)
	}

	compiled := &CompiledPolicy{
		levels:     make(map[string]CompiledLevel, len(cfg.Levels)),
		guardrails: make(map[string][]CompiledPattern, len(cfg.Guardrails.Patterns)),
	}

	for name, lvl := range cfg.Levels {
		if !knownLevel(name) {
			return nil, fmt.Errorf("%w: unknown policy level %q", config.ErrConfiguration, name)
		}
		compiled.levels[name] = CompiledLevel{
			Name:               name,
			Label:              lvl.Label,
			SLAResponseMinutes: lvl.SLAResponseMin,
			SLAActionMinutes:   actionMinutes(lvl),
			Keywords:           match.CompileTerms(lvl.Keywords),
			ResponseTemplate:   lvl.ResponseTemplate,
		}
	}

	for name, patterns := range cfg.Guardrails.Patterns {
		if !knownLevel(name) {
			return nil, fmt.Errorf("%w: unknown guardrail level %q", config.ErrConfiguration, name)
		}
		list := make([]CompiledPattern, 0, len(patterns))
		for _, p := range patterns {
			cp := CompiledPattern{
				ID:          p.ID,
				Explanation: p.Explanation,
				All:         match.CompileTerms(p.All),
				Any:         match.CompileTerms(p.Any),
			}
			for _, group := range p.AnyGroup {
				cp.AnyGroup = append(cp.AnyGroup, match.CompileTerms(group))
			}
			list = append(list, cp)
		}
		compiled.guardrails[name] = list
	}

	observability.Debugf("Policy compiled: %d levels, %d guardrail levels",
		len(compiled.levels), len(compiled.guardrails))
	return compiled, nil
}

// Level returns the compiled level by name.
func (p *CompiledPolicy) Level(name string) (CompiledLevel, bool) {
	lvl, ok := p.levels[name]
	return lvl, ok
}

// Guardrails returns the ordered guardrail patterns for a level. A level
// with no declared patterns yields nil.
func (p *CompiledPolicy) Guardrails(level string) []CompiledPattern {
	return p.guardrails[level]
}

// actionMinutes normalizes the mixed-unit SLA action target to minutes.
func actionMinutes(lvl config.LevelConfig) int {
	switch {
	case lvl.SLAActionMin > 0:
		return lvl.SLAActionMin
	case lvl.SLAActionHours > 0:
		return lvl.SLAActionHours * 60
	case lvl.SLAActionDays > 0:
		return lvl.SLAActionDays * 24 * 60
	default:
		return 0
	}
}

func knownLevel(name string) bool {
	for _, lvl := range config.KnownLevels {
		if name == lvl {
			return true
		}
	}
	return false
}
