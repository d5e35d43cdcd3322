package commands

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/generation"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

// NewRunCmd creates the run command: the full pipeline in one pass.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full triage pipeline: classify, retrieve, generate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			metricsPort, err := cmd.Flags().GetInt("metrics-port")
			if err != nil {
				return err
			}
			if metricsPort > 0 {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					addr := fmt.Sprintf(":%d", metricsPort)
					observability.Infof("Starting metrics server on %s", addr)
					if err := http.ListenAndServe(addr, mux); err != nil {
						observability.Errorf("Metrics server error: %v", err)
					}
				}()
			}

			classifier, err := buildClassifier(cfg)
			if err != nil {
				return err
			}

			baseDir, err := cmd.Flags().GetString("base-dir")
			if err != nil {
				return err
			}
			docsDir, err := cmd.Flags().GetString("docs-dir")
			if err != nil {
				return err
			}
			retriever, err := buildRetriever(cmd.Context(), cfg, baseDir, docsDir)
			if err != nil {
				return err
			}

			client := generation.NewOpenAIChatClient(
				cfg.Generation.Endpoint, "", cfg.Generation.Model)
			generator := generation.New(client, cfg.Generation)

			rows, err := readInput(cmd)
			if err != nil {
				return err
			}

			classifyRows(classifier, rows)
			if err := retrieveRows(cmd.Context(), retriever, rows); err != nil {
				return err
			}
			fails, err := generateRows(cmd.Context(), generator, rows)
			if err != nil {
				return err
			}

			if err := writeOutput(cmd, rows); err != nil {
				return err
			}
			failuresPath, err := cmd.Flags().GetString("failures")
			if err != nil {
				return err
			}
			return writeFailures(failuresPath, fails)
		},
	}

	cmd.Flags().String("input", "cleanData/messages.csv", "Input messages CSV")
	cmd.Flags().String("output", "cleanData/messages_final.csv", "Output CSV with all stage columns")
	cmd.Flags().String("failures", "cleanData/audit_llm_failures.csv", "Failure audit CSV")
	cmd.Flags().String("base-dir", ".", "Base directory document paths are relative to")
	cmd.Flags().String("docs-dir", "data/docs", "Directory holding procedure documents")
	cmd.Flags().Int("limit", 0, "Only process the first N rows (0 = all)")
	cmd.Flags().Int("metrics-port", 9190, "Port for Prometheus metrics (0 = disabled)")

	return cmd
}
