package audit

import (
	"encoding/json"
	"strings"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/store"
)

// GenerationRecord is the audit verdict for one row's generation output.
type GenerationRecord struct {
	MessageID        string
	UrgencyLevel     string
	Category         string
	GenJSONDict      bool
	RequiredInfoList bool
	SLAOK            bool
	IsUrgentOK       bool
	ResponseNonEmpty bool
	DecisionSourceOK bool
	StatusOK         bool
}

// OK reports whether every check passed.
func (r GenerationRecord) OK() bool {
	return r.GenJSONDict && r.RequiredInfoList && r.SLAOK && r.IsUrgentOK &&
		r.ResponseNonEmpty && r.DecisionSourceOK && r.StatusOK
}

// GenerationSummary aggregates the per-row verdicts.
type GenerationSummary struct {
	Rows             int
	GenJSONDict      int
	RequiredInfoList int
	SLAOK            int
	IsUrgentOK       int
	ResponseNonEmpty int
	DecisionSourceOK int
	StatusOK         int
	Failing          int
}

// AuditGeneration checks every row's generation columns: the stored object
// parses as a JSON dict, required_info as a JSON list, the SLA and urgency
// flags agree with the level tables, the draft is non-empty, the decision
// source reports retrieved context and a status is set.
func AuditGeneration(rows []store.Row) ([]GenerationRecord, GenerationSummary) {
	records := make([]GenerationRecord, 0, len(rows))
	var sum GenerationSummary

	for _, row := range rows {
		level := classification.CoerceLevel(row.UrgencyLevel)

		rec := GenerationRecord{
			MessageID:        row.MessageID,
			UrgencyLevel:     row.UrgencyLevel,
			Category:         row.Category,
			GenJSONDict:      isJSONDict(row.GenJSON),
			RequiredInfoList: isJSONList(row.RequiredInfo),
			SLAOK:            row.SLATargetMinutes == level.SLAMinutes(),
			IsUrgentOK:       row.IsUrgent == urgentFlag(level),
			ResponseNonEmpty: strings.TrimSpace(row.ResponseDraft) != "",
			DecisionSourceOK: strings.TrimSpace(row.DecisionSource) == "RAG",
			StatusOK:         strings.TrimSpace(row.Status) != "",
		}
		records = append(records, rec)

		sum.Rows++
		if rec.GenJSONDict {
			sum.GenJSONDict++
		}
		if rec.RequiredInfoList {
			sum.RequiredInfoList++
		}
		if rec.SLAOK {
			sum.SLAOK++
		}
		if rec.IsUrgentOK {
			sum.IsUrgentOK++
		}
		if rec.ResponseNonEmpty {
			sum.ResponseNonEmpty++
		}
		if rec.DecisionSourceOK {
			sum.DecisionSourceOK++
		}
		if rec.StatusOK {
			sum.StatusOK++
		}
		if !rec.OK() {
			sum.Failing++
		}
	}

	observability.Infof("Generation audit: %d rows, %d failing", sum.Rows, sum.Failing)
	return records, sum
}

// WriteGenerationReport writes the full report, and the failing rows to
// errorsPath when any exist.
func WriteGenerationReport(reportPath, errorsPath string, records []GenerationRecord) error {
	header := []string{
		"message_id", "urgency_level", "category",
		"check_gen_json_dict", "check_required_info_list", "check_sla",
		"check_is_urgent", "check_response_nonempty", "check_decision_source",
		"check_status",
	}

	all := make([][]string, 0, len(records))
	var failing [][]string
	for _, rec := range records {
		line := []string{
			rec.MessageID,
			rec.UrgencyLevel,
			rec.Category,
			boolCol(rec.GenJSONDict),
			boolCol(rec.RequiredInfoList),
			boolCol(rec.SLAOK),
			boolCol(rec.IsUrgentOK),
			boolCol(rec.ResponseNonEmpty),
			boolCol(rec.DecisionSourceOK),
			boolCol(rec.StatusOK),
		}
		all = append(all, line)
		if !rec.OK() {
			failing = append(failing, line)
		}
	}

	if err := store.WriteRecords(reportPath, header, all); err != nil {
		return err
	}
	if len(failing) > 0 {
		return store.WriteRecords(errorsPath, header, failing)
	}
	return nil
}

func isJSONDict(s string) bool {
	var obj map[string]any
	return json.Unmarshal([]byte(s), &obj) == nil && obj != nil
}

func isJSONList(s string) bool {
	var arr []any
	return json.Unmarshal([]byte(s), &arr) == nil && arr != nil
}

func urgentFlag(level classification.Level) int {
	if level.IsUrgent() {
		return 1
	}
	return 0
}
