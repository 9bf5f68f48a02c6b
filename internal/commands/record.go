package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"fintone/internal/core"
)

func newRecordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "record <statement>",
		Short: "Extract a money statement and save it to the ledger",
		Example: `  fintone record 'I spent $50 on groceries today'
  fintone record 'Made a profit of two lakh from the land sale'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			outcome, err := a.assistant.RecordStatement(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			printRecord(cmd, outcome.Record)
			printSaved(cmd, outcome.Saved)
			return nil
		},
	}
}

func printRecord(cmd *cobra.Command, r core.Record) {
	cmd.Printf("Type:    %s\n", r.Type.Capitalized())
	cmd.Printf("Amount:  %s\n", core.FormatUSD(r.Amount))
	cmd.Printf("Date:    %s\n", r.Date.ISO())
	cmd.Printf("Details: %s\n", r.Details)
}
