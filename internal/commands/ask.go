package commands

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the ledger",
		Example: `  fintone ask "How much loss did I have on 12 August?"
  fintone ask "Generate a monthly profit/loss report"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.assistant.Ask(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
				return nil
			}

			cmd.Println(result.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result, including the structured report, as JSON")
	return cmd
}
