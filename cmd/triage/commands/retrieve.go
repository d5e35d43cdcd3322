package commands

import (
	"github.com/spf13/cobra"
)

// NewRetrieveCmd creates the retrieve command.
func NewRetrieveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Attach procedure context to classified messages",
		Long: `Index the procedure documents and run nearest-neighbor retrieval for
every classified message. The canonical procedure document for the
message's level, and the category document when one is mapped, are always
forced into the results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
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

			rows, err := readInput(cmd)
			if err != nil {
				return err
			}
			if err := retrieveRows(cmd.Context(), retriever, rows); err != nil {
				return err
			}
			return writeOutput(cmd, rows)
		},
	}

	cmd.Flags().String("input", "cleanData/messages_rules.csv", "Input classified messages CSV")
	cmd.Flags().String("output", "cleanData/messages_with_context.csv", "Output CSV with retrieval columns")
	cmd.Flags().String("base-dir", ".", "Base directory document paths are relative to")
	cmd.Flags().String("docs-dir", "data/docs", "Directory holding procedure documents")
	cmd.Flags().Int("limit", 0, "Only process the first N rows (0 = all)")

	return cmd
}
