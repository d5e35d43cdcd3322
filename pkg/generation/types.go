// Package generation turns a classified message plus its retrieved context
// into a validated draft response. The model is only trusted for the draft
// text, the required-info list and a constrained assignee override; every
// other field is recomputed from the classification so a drifting model can
// never rewrite the triage decision.
package generation

import (
	"unicode/utf8"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
)

const (
	// StatusToValidate marks every draft for human review.
	StatusToValidate = "TO_VALIDATE"

	// DecisionRAG and DecisionNoRAG record whether procedure context was
	// available when the draft was produced.
	DecisionRAG   = "RAG"
	DecisionNoRAG = "NO_RAG"
)

// Generation is the normalized draft attached to a message. Field names
// follow the stored JSON.
type Generation struct {
	UrgencyLevel     string   `json:"urgency_level"`
	Category         string   `json:"category"`
	IsUrgent         int      `json:"is_urgent"`
	SLATargetMinutes int      `json:"sla_target_minutes"`
	AssignedTo       string   `json:"assigned_to"`
	ResponseDraft    string   `json:"response_draft"`
	RequiredInfo     []string `json:"required_info"`
	DecisionSource   string   `json:"decision_source"`
	Status           string   `json:"status"`
}

// Input is one message to draft a response for.
type Input struct {
	MessageID  string
	Text       string
	Level      classification.Level
	Category   classification.Category
	RAGContext string
}

// FailureRecord is the audit trail entry for a message whose generation
// exhausted its retries and fell back to the canned draft.
type FailureRecord struct {
	RowIndex     int    `json:"row_index"`
	MessageID    string `json:"message_id"`
	UrgencyLevel string `json:"urgency_level"`
	Category     string `json:"category"`
	Error        string `json:"error"`
	RawOutput    string `json:"raw_output"`
}

const (
	maxErrorChars = 1500
	maxRawChars   = 3000
)

// truncate caps s at max bytes without splitting a multi-byte rune, which
// matters for accented French text at the cap boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
