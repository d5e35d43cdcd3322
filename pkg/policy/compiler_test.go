package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/textnorm"
)

func testPolicyConfig() *config.PolicyConfig {
	return &config.PolicyConfig{
		Levels: map[string]config.LevelConfig{
			"P0": {Label: "Urgence critique", SLAResponseMin: 5, SLAActionMin: 30, Keywords: []string{"incendie", "Flammes"}},
			"P1": {Label: "Urgent", SLAResponseMin: 30, SLAActionHours: 4, Keywords: []string{"panne d'eau", "étincelles"}},
			"P2": {Label: "Maintenance", SLAResponseMin: 240, SLAActionHours: 72, Keywords: []string{"bruit", "poubelles"}},
			"P3": {Label: "Administratif", SLAResponseMin: 1440, SLAActionDays: 5, Keywords: []string{"attestation", "quittance"}},
		},
		Guardrails: config.GuardrailsConfig{
			Patterns: map[string][]config.GuardrailPattern{
				"P0": {
					{ID: "P0_GAS", Any: []string{"gaz", "odeur de gaz", "ri7t lgaz"}},
					{
						ID: "P0_ELEVATOR_WITH_PERSON_STRICT",
						AnyGroup: [][]string{
							{"ascenseur", "asansour"},
							{"bloqué", "coincé", "m7bouss"},
							{"personne", "quelqu'un", "dedans", "dakhel"},
						},
					},
					{ID: "P0_FLOOD_MAJOR", All: []string{"inondation"}, Any: []string{"majeure", "partout", "eau monte"}},
				},
				"P1": {
					{ID: "P1_SPARKS", Any: []string{"étincelles", "chertat"}},
				},
			},
		},
	}
}

func TestCompilePolicy(t *testing.T) {
	compiled, err := Compile(testPolicyConfig())
	require.NoError(t, err)

	p1, ok := compiled.Level("P1")
	require.True(t, ok)
	assert.Equal(t, 30, p1.SLAResponseMinutes)
	assert.Equal(t, 240, p1.SLAActionMinutes, "hours normalized to minutes")

	p3, ok := compiled.Level("P3")
	require.True(t, ok)
	assert.Equal(t, 7200, p3.SLAActionMinutes, "days normalized to minutes")

	// Terms are normalized at compile time, not per message.
	assert.True(t, p1.Keywords[1].Matches(textnorm.Normalize("des ETINCELLES au compteur")))

	require.Len(t, compiled.Guardrails("P0"), 3)
	assert.Equal(t, "P0_GAS", compiled.Guardrails("P0")[0].ID)
	assert.Nil(t, compiled.Guardrails("P3"))
}

func TestPatternClauses(t *testing.T) {
	compiled, err := Compile(testPolicyConfig())
	require.NoError(t, err)
	patterns := compiled.Guardrails("P0")

	gas := patterns[0]
	elevator := patterns[1]
	flood := patterns[2]

	tests := []struct {
		name     string
		pattern  CompiledPattern
		text     string
		expected bool
	}{
		{"any clause matches", gas, "il y a une odeur de gaz au rdc", true},
		{"any clause no term", gas, "tout va bien", false},
		{"any_group all groups contribute", elevator, "ascenseur bloqué avec une personne dedans", true},
		{"any_group darija variant", elevator, "asansour m7bouss w kayn chi wahed dakhel", true},
		{"any_group missing one group", elevator, "ascenseur bloqué depuis hier", false},
		{"all plus any", flood, "inondation majeure au parking", true},
		{"all satisfied any not", flood, "inondation legere", false},
		{"any satisfied all not", flood, "de l'eau partout", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.pattern.Matches(textnorm.Normalize(tt.text))
			if got != tt.expected {
				t.Errorf("pattern %s on %q = %v, want %v", tt.pattern.ID, tt.text, got, tt.expected)
			}
		})
	}
}

func TestCompileDoesNotMutateInput(t *testing.T) {
	cfg := testPolicyConfig()
	original := cfg.Levels["P1"].Keywords[1]

	_, err := Compile(cfg)
	require.NoError(t, err)

	assert.Equal(t, original, cfg.Levels["P1"].Keywords[1], "raw config must stay usable")
}

func TestCompileRejectsUnknownLevel(t *testing.T) {
	cfg := testPolicyConfig()
	cfg.Levels["P7"] = config.LevelConfig{}
	_, err := Compile(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfiguration))

	_, err = Compile(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfiguration))
}
