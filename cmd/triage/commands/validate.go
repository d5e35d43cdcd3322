package commands

import (
	"github.com/spf13/cobra"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/validation"
)

// NewValidateCmd creates the validate command for recording a human review
// decision on a generated draft.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Record a human review decision on a draft",
		Long: `Apply a validator's decision (APPROVED, REJECTED or DRAFT) to one
message. The final response defaults to the generated draft unless the
validator provides a rewrite. APPROVED and REJECTED are terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readInput(cmd)
			if err != nil {
				return err
			}

			messageID, _ := cmd.Flags().GetString("message-id")
			status, _ := cmd.Flags().GetString("status")
			by, _ := cmd.Flags().GetString("by")
			final, _ := cmd.Flags().GetString("final-response")
			comment, _ := cmd.Flags().GetString("comment")

			err = validation.Apply(rows, validation.Decision{
				MessageID:     messageID,
				Status:        status,
				ValidatedBy:   by,
				FinalResponse: final,
				Comment:       comment,
			})
			if err != nil {
				return err
			}

			if err := writeOutput(cmd, rows); err != nil {
				return err
			}
			observability.Infof("%d messages still pending review", validation.PendingCount(rows))
			return nil
		},
	}

	cmd.Flags().String("input", "cleanData/messages_final.csv", "Input messages CSV with generation columns")
	cmd.Flags().String("output", "cleanData/messages_final.csv", "Output CSV (defaults to in-place)")
	cmd.Flags().String("message-id", "", "Message to validate")
	cmd.Flags().String("status", "", "Decision: APPROVED, REJECTED or DRAFT")
	cmd.Flags().String("by", "", "Validator name (defaults to \"human\")")
	cmd.Flags().String("final-response", "", "Rewritten response (defaults to the draft)")
	cmd.Flags().String("comment", "", "Validator comment")
	cmd.Flags().Int("limit", 0, "Only load the first N rows (0 = all)")

	_ = cmd.MarkFlagRequired("message-id")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}
