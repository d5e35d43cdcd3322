package generation

import (
	"fmt"
	"strings"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
)

// SystemPrompt pins the assistant to short professional French, grounded
// only in the supplied context, with a strict JSON-only output contract.
const SystemPrompt = "Tu es un assistant IA pour un syndic / gestion immobilière au Maroc.\n\n" +
	"RÈGLES STRICTES:\n" +
	"- Tu réponds TOUJOURS en français professionnel, même si le message est en darija.\n" +
	"- Réponse courte, claire, actionnable.\n" +
	"- Base-toi UNIQUEMENT sur le CONTEXTE fourni.\n" +
	"- Si le contexte est insuffisant: ne donne pas d'action technique précise; demande les infos via required_info.\n" +
	"- Respecte urgency_level et category EXACTEMENT.\n" +
	"- Si urgency_level est P0 ou P1: ajoute consignes de sécurité + escalade.\n\n" +
	"FORMAT STRICT:\n" +
	"- Répond UNIQUEMENT en JSON valide. Aucun texte hors JSON.\n" +
	"- required_info doit toujours être une liste [].\n"

// BuildUserPrompt assembles the per-message prompt. The message and context
// are truncated to the given caps before insertion, and the expected JSON
// shape is spelled out with the locked classification values inlined so the
// model has no freedom over them.
func BuildUserPrompt(text string, level classification.Level, category classification.Category, ragContext string, maxTextChars, maxContextChars int) string {
	msg := strings.TrimSpace(truncate(text, maxTextChars))
	ctx := strings.TrimSpace(truncate(ragContext, maxContextChars))
	ctxFlag := "DISPONIBLE"
	if ctx == "" {
		ctxFlag = "VIDE"
	}

	isUrgent := 0
	if level.IsUrgent() {
		isUrgent = 1
	}

	return strings.TrimSpace(fmt.Sprintf(`
ENTRÉE CLASSIFIÉE (NE PAS MODIFIER):
- urgency_level: %[1]s
- category: %[2]s

MESSAGE UTILISATEUR:
<<<USER_MESSAGE
%[3]s
USER_MESSAGE>>>

CONTEXTE RAG [%[4]s] (preuves):
<<<RAG_CONTEXT
%[5]s
RAG_CONTEXT>>>

TÂCHE:
1) Rédige une réponse AU RÉSIDENT en français, courte et actionnable, dans response_draft.
2) Si CONTEXTE RAG est VIDE ou insuffisant -> required_info liste les infos à demander.
3) Si P0/P1 -> ajouter consignes sécurité + escalade.
4) Retourne UNIQUEMENT un JSON strict.

JSON attendu (forme exacte):
{
  "urgency_level": "%[1]s",
  "category": "%[2]s",
  "is_urgent": %[6]d,
  "sla_target_minutes": %[7]d,
  "assigned_to": "%[8]s",
  "response_draft": "string",
  "required_info": [],
  "decision_source": "RAG",
  "status": "TO_VALIDATE"
}`,
		level.String(), string(category), msg, ctxFlag, ctx,
		isUrgent, level.SLAMinutes(), string(level.AssignedRole())))
}
