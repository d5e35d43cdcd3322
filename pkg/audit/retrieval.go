// Package audit re-validates stage outputs after the fact. Auditors only
// observe and report; they never correct a row.
package audit

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/store"
)

// RetrievalRecord is the audit verdict for one row's retrieval output.
type RetrievalRecord struct {
	RowIndex        int
	MessageID       string
	ResidenceID     string
	Level           string
	ExpectedProcDoc string
	SourcesJSONOK   bool
	ScoresJSONOK    bool
	LengthsMatch    bool
	TopK            int
	TopKOK          bool
	ContextEmpty    bool
	HasExpectedProc bool
	Top1Doc         string
}

// OK reports whether every check passed.
func (r RetrievalRecord) OK() bool {
	return r.SourcesJSONOK && r.ScoresJSONOK && r.LengthsMatch &&
		r.TopKOK && !r.ContextEmpty && r.HasExpectedProc
}

// RetrievalSummary aggregates the per-row verdicts.
type RetrievalSummary struct {
	Rows            int
	JSONOK          int
	LengthsMatch    int
	ContextNonEmpty int
	TopKOK          int
	ExpectedProcOK  int
}

// AuditRetrieval checks every row's retrieval columns: sources and scores
// parse as JSON arrays of equal length, at least one result is present, the
// context is non-empty, and the level's canonical procedure document made
// it into the sources. forcedDocByLevel maps level names to document path
// prefixes; rows with an unknown level are held to the P3 document.
func AuditRetrieval(rows []store.Row, forcedDocByLevel map[string]string) ([]RetrievalRecord, RetrievalSummary) {
	records := make([]RetrievalRecord, 0, len(rows))
	var sum RetrievalSummary

	for i, row := range rows {
		level := strings.TrimSpace(row.UrgencyLevel)
		if level == "" {
			level = classification.P3.String()
		}
		expected, ok := forcedDocByLevel[level]
		if !ok {
			expected = forcedDocByLevel[classification.P3.String()]
		}

		srcOK, sources := parseJSONStringList(row.RAGSources)
		scrOK, scores := parseJSONNumberList(row.RAGScores)

		rec := RetrievalRecord{
			RowIndex:        i,
			MessageID:       row.MessageID,
			ResidenceID:     row.ResidenceID,
			Level:           level,
			ExpectedProcDoc: expected,
			SourcesJSONOK:   srcOK,
			ScoresJSONOK:    scrOK,
			LengthsMatch:    len(sources) == len(scores),
			TopK:            len(sources),
			TopKOK:          len(sources) >= 1,
			ContextEmpty:    strings.TrimSpace(row.RAGContext) == "",
		}
		for _, s := range sources {
			if strings.HasPrefix(s, expected) {
				rec.HasExpectedProc = true
				break
			}
		}
		if len(sources) > 0 {
			rec.Top1Doc = docPrefix(sources[0])
		}

		records = append(records, rec)

		sum.Rows++
		if rec.SourcesJSONOK && rec.ScoresJSONOK {
			sum.JSONOK++
		}
		if rec.LengthsMatch {
			sum.LengthsMatch++
		}
		if !rec.ContextEmpty {
			sum.ContextNonEmpty++
		}
		if rec.TopKOK {
			sum.TopKOK++
		}
		if rec.HasExpectedProc {
			sum.ExpectedProcOK++
		}
	}

	observability.Infof("Retrieval audit: %d rows, json ok %d, lengths ok %d, context ok %d, topk ok %d, expected proc %d",
		sum.Rows, sum.JSONOK, sum.LengthsMatch, sum.ContextNonEmpty, sum.TopKOK, sum.ExpectedProcOK)
	return records, sum
}

// WriteRetrievalReport writes the full report, and the failing rows to
// errorsPath when any exist.
func WriteRetrievalReport(reportPath, errorsPath string, records []RetrievalRecord) error {
	header := []string{
		"row_index", "message_id", "residence_id", "level", "expected_proc_doc",
		"sources_json_ok", "scores_json_ok", "lengths_match", "topk", "topk_ok",
		"context_empty", "has_expected_proc", "top1_doc",
	}

	all := make([][]string, 0, len(records))
	var failing [][]string
	for _, rec := range records {
		line := []string{
			strconv.Itoa(rec.RowIndex),
			rec.MessageID,
			rec.ResidenceID,
			rec.Level,
			rec.ExpectedProcDoc,
			boolCol(rec.SourcesJSONOK),
			boolCol(rec.ScoresJSONOK),
			boolCol(rec.LengthsMatch),
			strconv.Itoa(rec.TopK),
			boolCol(rec.TopKOK),
			boolCol(rec.ContextEmpty),
			boolCol(rec.HasExpectedProc),
			rec.Top1Doc,
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

// docPrefix extracts the document path from a passage ID.
func docPrefix(source string) string {
	if i := strings.Index(source, " | "); i >= 0 {
		return strings.TrimSpace(source[:i])
	}
	return strings.TrimSpace(source)
}

// parseJSONStringList accepts an empty cell as an empty list, matching how
// untouched rows look before retrieval runs.
func parseJSONStringList(s string) (bool, []string) {
	if strings.TrimSpace(s) == "" {
		return true, nil
	}
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return false, nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		str, ok := v.(string)
		if !ok {
			return false, nil
		}
		out = append(out, str)
	}
	return true, out
}

func parseJSONNumberList(s string) (bool, []float64) {
	if strings.TrimSpace(s) == "" {
		return true, nil
	}
	var arr []any
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return false, nil
	}
	out := make([]float64, 0, len(arr))
	for _, v := range arr {
		f, ok := v.(float64)
		if !ok {
			return false, nil
		}
		out = append(out, f)
	}
	return true, out
}

func boolCol(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
