package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
)

// reqByCategory lists the follow-up questions to ask the resident when no
// procedure context was available for the category.
var reqByCategory = map[string][]string{
	"admin":         {"mois/période concernée", "résidence/bloc", "num appartement", "email (si envoi PDF)"},
	"elevator":      {"résidence/bloc", "étage/localisation exacte", "depuis quand", "personnes bloquées ?", "danger immédiat ?"},
	"electricity":   {"résidence/bloc", "localisation exacte", "depuis quand", "étincelles/odeur brûlé ?", "danger immédiat ?"},
	"water_leak":    {"résidence/bloc", "localisation exacte", "depuis quand", "photo/vidéo si possible"},
	"garage_access": {"résidence/bloc", "porte/accès concerné", "badge/télécommande ?", "depuis quand"},
	"cleanliness":   {"résidence/bloc", "zone exacte (escaliers/étage)", "photo si possible"},
	"noise":         {"résidence/bloc", "heure", "source du bruit (si connue)"},
	"security":      {"résidence/bloc", "localisation exacte", "description", "danger immédiat ?", "appel sécurité/police ?"},
	"other":         {"résidence/bloc", "localisation exacte", "détails", "photo/vidéo si possible"},
}

// urgentSupplement is always requested for P0/P1 messages.
var urgentSupplement = []string{"localisation exacte", "depuis quand", "photo/vidéo si possible"}

// ensureStringList coerces a model value into a clean string list. Lists
// keep their non-blank entries; a string is parsed as a JSON array when it
// looks like one, otherwise split on commas.
func ensureStringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range x {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		var out []string
		for _, s := range x {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			var arr []any
			if err := json.Unmarshal([]byte(s), &arr); err == nil {
				return ensureStringList(arr)
			}
		}
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		if s := strings.TrimSpace(fmt.Sprint(x)); s != "" {
			return []string{s}
		}
		return nil
	}
}

// MergeRequiredInfo combines the model's list with the category defaults
// (only when no context was retrieved) and the urgency supplement,
// deduplicating while preserving first-seen order and capping at limit.
func MergeRequiredInfo(existing []string, category classification.Category, level classification.Level, ragContext string, limit int) []string {
	merged := append([]string(nil), existing...)

	if strings.TrimSpace(ragContext) == "" {
		defaults, ok := reqByCategory[string(category)]
		if !ok {
			defaults = reqByCategory["other"]
		}
		merged = append(merged, defaults...)
	}
	if level.IsUrgent() {
		merged = append(merged, urgentSupplement...)
	}

	seen := make(map[string]struct{}, len(merged))
	out := make([]string, 0, len(merged))
	for _, item := range merged {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Normalize rebuilds the output from the classification ground truth,
// taking from the model only the draft text, the required-info list and an
// assignee override restricted to the known roles.
func Normalize(obj map[string]any, level classification.Level, category classification.Category, ragContext string, requiredInfoLimit int) Generation {
	cat := coerceCategory(category)

	gen := Generation{
		UrgencyLevel:     level.String(),
		Category:         string(cat),
		IsUrgent:         boolToInt(level.IsUrgent()),
		SLATargetMinutes: level.SLAMinutes(),
		AssignedTo:       string(level.AssignedRole()),
		DecisionSource:   decisionSource(ragContext),
		Status:           StatusToValidate,
	}

	if assigned, _ := obj["assigned_to"].(string); assigned != "" {
		assigned = strings.ToUpper(strings.TrimSpace(assigned))
		if classification.ValidRole(assigned) {
			gen.AssignedTo = assigned
		}
	}

	response, _ := obj["response_draft"].(string)
	response = strings.TrimSpace(response)
	if response == "" {
		response = fallbackResponse(level)
	}
	gen.ResponseDraft = response

	req := ensureStringList(obj["required_info"])
	gen.RequiredInfo = MergeRequiredInfo(req, cat, level, ragContext, requiredInfoLimit)

	return gen
}

// Fallback produces the canned draft used when generation fails outright.
// It never errors: triage must emit a usable draft for every message.
func Fallback(level classification.Level, category classification.Category, ragContext string, requiredInfoLimit int) Generation {
	cat := coerceCategory(category)
	return Generation{
		UrgencyLevel:     level.String(),
		Category:         string(cat),
		IsUrgent:         boolToInt(level.IsUrgent()),
		SLATargetMinutes: level.SLAMinutes(),
		AssignedTo:       string(level.AssignedRole()),
		ResponseDraft:    fallbackResponse(level),
		RequiredInfo:     MergeRequiredInfo(nil, cat, level, ragContext, requiredInfoLimit),
		DecisionSource:   decisionSource(ragContext),
		Status:           StatusToValidate,
	}
}

func fallbackResponse(level classification.Level) string {
	if level.IsUrgent() {
		return "Signalement urgent reçu. Merci d'indiquer la résidence/bloc, la localisation exacte, " +
			"depuis quand, et joindre une photo/vidéo si possible. " +
			"Si danger immédiat, appelez les urgences. Nous alertons le prestataire."
	}
	return "Demande reçue. Merci de préciser la résidence/bloc, la localisation exacte, " +
		"et joindre une photo/vidéo si possible."
}

func decisionSource(ragContext string) string {
	if strings.TrimSpace(ragContext) == "" {
		return DecisionNoRAG
	}
	return DecisionRAG
}

func coerceCategory(category classification.Category) classification.Category {
	if strings.TrimSpace(string(category)) == "" {
		return classification.CategoryOther
	}
	return category
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
