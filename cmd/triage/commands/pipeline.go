package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/generation"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/policy"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/retrieval"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/store"
)

// loadConfig reads the --config flag and loads the triage configuration.
func loadConfig(cmd *cobra.Command) (*config.TriageConfig, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// readInput loads the input CSV and applies an optional row limit.
func readInput(cmd *cobra.Command) ([]store.Row, error) {
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return nil, err
	}
	rows, err := store.ReadRows(input)
	if err != nil {
		return nil, err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	observability.Infof("Loaded %d rows from %s", len(rows), input)
	return rows, nil
}

func writeOutput(cmd *cobra.Command, rows []store.Row) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if err := store.WriteRows(output, rows); err != nil {
		return err
	}
	observability.Infof("Saved %d rows to %s", len(rows), output)
	return nil
}

// buildClassifier compiles the policy into a ready classifier.
func buildClassifier(cfg *config.TriageConfig) (*classification.Classifier, error) {
	compiled, err := policy.Compile(&cfg.Policy)
	if err != nil {
		return nil, err
	}
	return classification.NewClassifier(compiled, cfg.CategoryRules), nil
}

// classifyRows runs the classification stage in place.
func classifyRows(c *classification.Classifier, rows []store.Row) {
	for i := range rows {
		res := c.Classify(rows[i].Text)
		rows[i].UrgencyLevel = res.Level.String()
		rows[i].RuleMatch = res.RuleMatch
		rows[i].Category = string(res.Category)
		rows[i].CategoryMatch = res.CategoryMatch
		if res.IsUrgent {
			rows[i].IsUrgent = 1
		} else {
			rows[i].IsUrgent = 0
		}
	}
}

// buildRetriever loads and indexes the document corpus.
func buildRetriever(ctx context.Context, cfg *config.TriageConfig, baseDir, docsDir string) (*retrieval.Retriever, error) {
	passages, err := retrieval.LoadCorpus(baseDir, docsDir)
	if err != nil {
		return nil, err
	}

	embedder := retrieval.NewOpenAIEmbedder(
		cfg.Retrieval.Embedding.Endpoint, "", cfg.Retrieval.Embedding.Model)
	index := retrieval.NewMemoryIndex(embedder)
	if err := index.Index(ctx, passages); err != nil {
		return nil, fmt.Errorf("failed to index corpus: %w", err)
	}

	return retrieval.New(index, index, cfg.Retrieval), nil
}

// retrieveRows runs the retrieval stage in place. Rows are expected to be
// classified already.
func retrieveRows(ctx context.Context, r *retrieval.Retriever, rows []store.Row) error {
	for i := range rows {
		level := classification.CoerceLevel(rows[i].UrgencyLevel)
		res := r.Retrieve(ctx, rows[i].Text, level, classification.Category(rows[i].Category))

		sources := res.Sources
		if sources == nil {
			sources = []string{}
		}
		scores := res.Scores
		if scores == nil {
			scores = []float64{}
		}

		srcJSON, err := json.Marshal(sources)
		if err != nil {
			return fmt.Errorf("failed to encode sources for row %d: %w", i, err)
		}
		scoreJSON, err := json.Marshal(scores)
		if err != nil {
			return fmt.Errorf("failed to encode scores for row %d: %w", i, err)
		}

		rows[i].RAGSources = string(srcJSON)
		rows[i].RAGScores = string(scoreJSON)
		rows[i].RAGContext = res.Context
	}
	return nil
}

// generateRows runs the generation stage in place and returns the failure
// records for messages that fell back to the canned draft.
func generateRows(ctx context.Context, g *generation.Generator, rows []store.Row) ([]generation.FailureRecord, error) {
	inputs := make([]generation.Input, len(rows))
	for i := range rows {
		inputs[i] = generation.Input{
			MessageID:  rows[i].MessageID,
			Text:       rows[i].Text,
			Level:      classification.CoerceLevel(rows[i].UrgencyLevel),
			Category:   classification.Category(rows[i].Category),
			RAGContext: rows[i].RAGContext,
		}
	}

	results, fails := g.GenerateBatch(ctx, inputs)

	for i := range rows {
		gen := results[i]

		genJSON, err := json.Marshal(gen)
		if err != nil {
			return nil, fmt.Errorf("failed to encode generation for row %d: %w", i, err)
		}
		reqInfo := gen.RequiredInfo
		if reqInfo == nil {
			reqInfo = []string{}
		}
		reqJSON, err := json.Marshal(reqInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to encode required info for row %d: %w", i, err)
		}

		rows[i].GenJSON = string(genJSON)
		rows[i].ResponseDraft = gen.ResponseDraft
		rows[i].RequiredInfo = string(reqJSON)
		rows[i].AssignedTo = gen.AssignedTo
		rows[i].Status = gen.Status
		rows[i].SLATargetMinutes = gen.SLATargetMinutes
		rows[i].DecisionSource = gen.DecisionSource
	}
	return fails, nil
}

// writeFailures saves the generation failure audit, if any.
func writeFailures(path string, fails []generation.FailureRecord) error {
	if len(fails) == 0 {
		return nil
	}

	records := make([][]string, 0, len(fails))
	for _, f := range fails {
		records = append(records, []string{
			fmt.Sprint(f.RowIndex), f.MessageID, f.UrgencyLevel, f.Category, f.Error, f.RawOutput,
		})
	}
	if err := store.WriteRecords(path,
		[]string{"row_index", "message_id", "urgency_level", "category", "error", "raw_output"},
		records); err != nil {
		return err
	}
	observability.Warnf("%d generation failures saved to %s", len(fails), path)
	return nil
}
