package commands

import (
	"github.com/spf13/cobra"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/audit"
)

// NewAuditCmd creates the audit command with its stage subcommands.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Re-validate stage outputs and export audit reports",
	}
	cmd.AddCommand(newAuditRetrievalCmd())
	cmd.AddCommand(newAuditGenerationCmd())
	return cmd
}

func newAuditRetrievalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrieval",
		Short: "Audit retrieval outputs",
		Long: `Check every row's retrieval columns: valid JSON source and score
arrays of equal length, at least one result, non-empty context, and the
level's canonical procedure document present in the sources. Findings are
reported, never corrected.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rows, err := readInput(cmd)
			if err != nil {
				return err
			}

			records, _ := audit.AuditRetrieval(rows, cfg.Retrieval.ForcedDocByLevel)

			report, err := cmd.Flags().GetString("report")
			if err != nil {
				return err
			}
			errorsPath, err := cmd.Flags().GetString("errors")
			if err != nil {
				return err
			}
			return audit.WriteRetrievalReport(report, errorsPath, records)
		},
	}

	cmd.Flags().String("input", "cleanData/messages_with_context.csv", "Input messages CSV with retrieval columns")
	cmd.Flags().String("report", "cleanData/audit/rag_validation_report.csv", "Full audit report CSV")
	cmd.Flags().String("errors", "cleanData/audit/rag_validation_errors.csv", "Failing rows CSV")
	cmd.Flags().Int("limit", 0, "Only audit the first N rows (0 = all)")

	return cmd
}

func newAuditGenerationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generation",
		Short: "Audit generation outputs",
		Long: `Check every row's generation columns: the stored JSON parses, the
required-info list is a JSON array, SLA and urgency agree with the level
tables, the draft is non-empty and a status is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readInput(cmd)
			if err != nil {
				return err
			}

			records, _ := audit.AuditGeneration(rows)

			report, err := cmd.Flags().GetString("report")
			if err != nil {
				return err
			}
			errorsPath, err := cmd.Flags().GetString("errors")
			if err != nil {
				return err
			}
			return audit.WriteGenerationReport(report, errorsPath, records)
		},
	}

	cmd.Flags().String("input", "cleanData/messages_final.csv", "Input messages CSV with generation columns")
	cmd.Flags().String("report", "cleanData/audit/generation_validation_report.csv", "Full audit report CSV")
	cmd.Flags().String("errors", "cleanData/audit/generation_validation_errors.csv", "Failing rows CSV")
	cmd.Flags().Int("limit", 0, "Only audit the first N rows (0 = all)")

	return cmd
}
