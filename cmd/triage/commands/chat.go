package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/generation"
)

// NewChatCmd creates the interactive chat command, a quick way to probe the
// generation stage without running the pipeline.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactively draft responses from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client := generation.NewOpenAIChatClient(
				cfg.Generation.Endpoint, "", cfg.Generation.Model)
			generator := generation.New(client, cfg.Generation)

			fmt.Printf("Chat terminal | %s | model=%s\n", cfg.Generation.Endpoint, cfg.Generation.Model)
			fmt.Println("Type 'exit' to quit.")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			prompt := func(label string) (string, bool) {
				fmt.Print(label)
				if !scanner.Scan() {
					return "", false
				}
				return strings.TrimSpace(scanner.Text()), true
			}

			for {
				text, ok := prompt("Message: ")
				if !ok || text == "" || text == "exit" || text == "quit" {
					return nil
				}

				levelIn, ok := prompt("Urgency (P0/P1/P2/P3) [P3]: ")
				if !ok {
					return nil
				}
				level := classification.CoerceLevel(strings.ToUpper(levelIn))

				category, ok := prompt("Category [other]: ")
				if !ok {
					return nil
				}
				if category == "" {
					category = string(classification.CategoryOther)
				}

				ragContext, ok := prompt("Context (optional): ")
				if !ok {
					return nil
				}

				start := time.Now()
				gen, fail := generator.GenerateOne(cmd.Context(), generation.Input{
					MessageID:  "chat",
					Text:       text,
					Level:      level,
					Category:   classification.Category(category),
					RAGContext: ragContext,
				})
				if fail != nil {
					fmt.Printf("generation failed (%s), fallback draft:\n", fail.Error)
				}

				out, err := json.MarshalIndent(gen, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				fmt.Printf("%.1fs\n\n", time.Since(start).Seconds())
			}
		},
	}
	return cmd
}
