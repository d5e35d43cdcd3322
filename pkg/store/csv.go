// Package store reads and writes the pipeline's CSV interchange files.
// Every stage consumes the previous stage's file and appends its own
// columns, so readers are tolerant of missing columns and writers always
// emit the full set.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

// Row is one message moving through the pipeline. Stage columns are zero
// until the stage that owns them has run.
type Row struct {
	MessageID   string
	ResidenceID string
	CreatedAt   string
	Text        string

	// Classification stage.
	UrgencyLevel  string
	RuleMatch     string
	Category      string
	CategoryMatch string
	IsUrgent      int

	// Retrieval stage. Sources and scores are stored as JSON arrays.
	RAGSources string
	RAGScores  string
	RAGContext string

	// Generation stage. GenJSON holds the full normalized object;
	// RequiredInfo is a JSON array.
	GenJSON          string
	ResponseDraft    string
	RequiredInfo     string
	AssignedTo       string
	Status           string
	SLATargetMinutes int
	DecisionSource   string

	// Human validation stage.
	ValidationStatus string
	ValidatedBy      string
	ValidatedAt      string
	FinalResponse    string
	ValidatorComment string
}

var columns = []string{
	"message_id",
	"residence_id",
	"created_at",
	"text_clean",
	"urgency_level",
	"rule_match",
	"category",
	"category_match",
	"is_urgent",
	"rag_sources",
	"rag_scores",
	"rag_context",
	"gen_json",
	"response_draft",
	"required_info",
	"assigned_to",
	"status",
	"sla_target_minutes",
	"decision_source",
	"validation_status",
	"validated_by",
	"validated_at",
	"final_response",
	"validator_comment",
}

// ReadRows loads a pipeline CSV. Unknown columns are ignored and missing
// ones stay zero, so any stage's output is readable. A row without a
// message_id gets a fresh UUID so downstream audit records can reference
// it.
func ReadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	if _, ok := col["text_clean"]; !ok {
		return nil, fmt.Errorf("%s is missing the text_clean column", path)
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	generated := 0
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := Row{
			MessageID:        field(rec, "message_id"),
			ResidenceID:      field(rec, "residence_id"),
			CreatedAt:        field(rec, "created_at"),
			Text:             field(rec, "text_clean"),
			UrgencyLevel:     field(rec, "urgency_level"),
			RuleMatch:        field(rec, "rule_match"),
			Category:         field(rec, "category"),
			CategoryMatch:    field(rec, "category_match"),
			IsUrgent:         atoiOrZero(field(rec, "is_urgent")),
			RAGSources:       field(rec, "rag_sources"),
			RAGScores:        field(rec, "rag_scores"),
			RAGContext:       field(rec, "rag_context"),
			GenJSON:          field(rec, "gen_json"),
			ResponseDraft:    field(rec, "response_draft"),
			RequiredInfo:     field(rec, "required_info"),
			AssignedTo:       field(rec, "assigned_to"),
			Status:           field(rec, "status"),
			SLATargetMinutes: atoiOrZero(field(rec, "sla_target_minutes")),
			DecisionSource:   field(rec, "decision_source"),
			ValidationStatus: field(rec, "validation_status"),
			ValidatedBy:      field(rec, "validated_by"),
			ValidatedAt:      field(rec, "validated_at"),
			FinalResponse:    field(rec, "final_response"),
			ValidatorComment: field(rec, "validator_comment"),
		}
		if row.MessageID == "" {
			row.MessageID = uuid.NewString()
			generated++
		}
		rows = append(rows, row)
	}

	if generated > 0 {
		observability.Warnf("Generated %d message ids for rows missing message_id in %s", generated, path)
	}
	return rows, nil
}

// WriteRows writes the full column set for every row.
func WriteRows(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range rows {
		row := &rows[i]
		rec := []string{
			row.MessageID,
			row.ResidenceID,
			row.CreatedAt,
			row.Text,
			row.UrgencyLevel,
			row.RuleMatch,
			row.Category,
			row.CategoryMatch,
			strconv.Itoa(row.IsUrgent),
			row.RAGSources,
			row.RAGScores,
			row.RAGContext,
			row.GenJSON,
			row.ResponseDraft,
			row.RequiredInfo,
			row.AssignedTo,
			row.Status,
			strconv.Itoa(row.SLATargetMinutes),
			row.DecisionSource,
			row.ValidationStatus,
			row.ValidatedBy,
			row.ValidatedAt,
			row.FinalResponse,
			row.ValidatorComment,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// WriteRecords writes arbitrary records under a header, used for audit
// reports.
func WriteRecords(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
