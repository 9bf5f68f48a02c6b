package commands

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const replBanner = `============================================================
Fintone Assistant
============================================================

Commands:
  - Enter a money statement to extract and save it
  - Start with '?' or 'query:' to ask a question
  - Type 'file:<path>' to transcribe and record an audio file
  - Type 'exit' or 'quit' to leave

Examples:
  I made a profit of $500 on March 15th selling old items
  ? Show me all profit details for March
  ? Generate a monthly profit/loss report
============================================================`

func newReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive session for statements and questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			cmd.Println(replBanner)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				cmd.Print("You: ")
				if !scanner.Scan() {
					cmd.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())

				switch {
				case line == "":
					continue

				case line == "exit" || line == "quit" || line == "q":
					cmd.Println("Goodbye!")
					return nil

				case strings.HasPrefix(strings.ToLower(line), "file:"):
					path := strings.TrimSpace(line[len("file:"):])
					audio, err := os.ReadFile(path)
					if err != nil {
						cmd.Printf("Error: %v\n\n", err)
						continue
					}
					text, outcome, err := a.assistant.RecordAudio(ctx, audio, filepath.Base(path))
					if err != nil {
						cmd.Printf("Error: %v\n\n", err)
						continue
					}
					cmd.Printf("\nTranscription: %s\n\n", text)
					printRecord(cmd, outcome.Record)
					printSaved(cmd, outcome.Saved)

				case strings.HasPrefix(line, "?") || strings.HasPrefix(strings.ToLower(line), "query:"):
					question := strings.TrimSpace(strings.TrimPrefix(line, "?"))
					if strings.HasPrefix(strings.ToLower(question), "query:") {
						question = strings.TrimSpace(question[len("query:"):])
					}
					result, err := a.assistant.Ask(ctx, question)
					if err != nil {
						cmd.Printf("Error: %v\n\n", err)
						continue
					}
					cmd.Println()
					cmd.Println(result.Text)
					if result.Report != nil {
						if data, jerr := json.MarshalIndent(result.Report, "", "  "); jerr == nil {
							cmd.Println()
							cmd.Println(string(data))
						}
					}
					cmd.Println()

				default:
					outcome, err := a.assistant.RecordStatement(ctx, line)
					if err != nil {
						cmd.Printf("Error: %v\n\n", err)
						continue
					}
					cmd.Println()
					printRecord(cmd, outcome.Record)
					printSaved(cmd, outcome.Saved)
				}
			}
		},
	}
}

func printSaved(cmd *cobra.Command, saved bool) {
	if saved {
		cmd.Println("Status:  saved")
	} else {
		cmd.Println("Status:  duplicate, not saved")
	}
	cmd.Println()
}
