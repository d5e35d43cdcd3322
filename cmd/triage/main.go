package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SoufianeAzerdaoui/syndismart-ai/cmd/triage/commands"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if _, err := observability.InitLoggerFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "triage",
		Short: "Resident message triage pipeline",
		Long: `triage classifies resident messages into priority levels and
categories, retrieves the matching procedure context, and drafts a
response for human validation.

Common workflows:
  triage classify                 # Rule-based priority + category
  triage retrieve                 # Attach procedure context
  triage generate                 # Draft responses via the LLM
  triage run                      # All three stages in one pass
  triage audit retrieval          # Re-validate retrieval outputs
  triage validate --message-id m1 --status APPROVED

For detailed help on any command, use:
  triage <command> --help`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	}

	rootCmd.PersistentFlags().StringP("config", "c", "config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(commands.NewClassifyCmd())
	rootCmd.AddCommand(commands.NewRetrieveCmd())
	rootCmd.AddCommand(commands.NewGenerateCmd())
	rootCmd.AddCommand(commands.NewRunCmd())
	rootCmd.AddCommand(commands.NewAuditCmd())
	rootCmd.AddCommand(commands.NewChatCmd())
	rootCmd.AddCommand(commands.NewValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
