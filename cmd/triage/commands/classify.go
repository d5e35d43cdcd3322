package commands

import (
	"github.com/spf13/cobra"
)

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify messages into priority levels and categories",
		Long: `Run the rule-based classification stage: each message gets a priority
level (P0-P3), a matched rule id, a category and the derived urgency flag.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			classifier, err := buildClassifier(cfg)
			if err != nil {
				return err
			}

			rows, err := readInput(cmd)
			if err != nil {
				return err
			}

			classifyRows(classifier, rows)
			return writeOutput(cmd, rows)
		},
	}

	cmd.Flags().String("input", "cleanData/messages.csv", "Input messages CSV")
	cmd.Flags().String("output", "cleanData/messages_rules.csv", "Output CSV with classification columns")
	cmd.Flags().Int("limit", 0, "Only process the first N rows (0 = all)")

	return cmd
}
