package commands

import (
	"github.com/spf13/cobra"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/generation"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft resident responses for messages with context",
		Long: `Run the LLM generation stage over messages that already carry their
retrieval context. Output is normalized against the classification: the
model can never change the level, category, urgency or SLA. Messages whose
generation fails get a canned fallback draft and a failure audit record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
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

	cmd.Flags().String("input", "cleanData/messages_with_context.csv", "Input messages CSV with retrieval columns")
	cmd.Flags().String("output", "cleanData/messages_final.csv", "Output CSV with generation columns")
	cmd.Flags().String("failures", "cleanData/audit_llm_failures.csv", "Failure audit CSV")
	cmd.Flags().Int("limit", 0, "Only process the first N rows (0 = all)")

	return cmd
}
