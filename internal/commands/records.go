package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintone/internal/core"
)

func newRecordsCommand() *cobra.Command {
	var (
		typeFlag string
		dateFlag string
		year     int
		month    int
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List ledger records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			var txType core.TransactionType
			if typeFlag != "" {
				txType = core.TransactionType(strings.ToLower(typeFlag))
				if !txType.Valid() {
					return fmt.Errorf("invalid type %q: must be profit or loss", typeFlag)
				}
			}

			reader := a.assistant.Records()
			var records []core.Record
			switch {
			case dateFlag != "":
				d, err := core.ParseDate(dateFlag)
				if err != nil {
					return err
				}
				records, err = reader.ReadByDate(ctx, d)
				if err != nil {
					return err
				}
			case month != 0:
				if month < 1 || month > 12 {
					return fmt.Errorf("invalid month %d: must be between 1 and 12", month)
				}
				y := year
				if y == 0 {
					y = time.Now().UTC().Year()
				}
				records, err = reader.ReadByMonth(ctx, y, month)
				if err != nil {
					return err
				}
			case typeFlag != "":
				records, err = reader.ReadByType(ctx, txType)
				if err != nil {
					return err
				}
				txType = ""
			default:
				records, err = reader.ReadAll(ctx)
				if err != nil {
					return err
				}
			}

			if txType != "" {
				filtered := records[:0]
				for _, r := range records {
					if r.Type == txType {
						filtered = append(filtered, r)
					}
				}
				records = filtered
			}

			for _, r := range records {
				cmd.Printf("%-7s %12s  %s  %s\n",
					r.Type.Capitalized(), core.FormatUSD(r.Amount), r.Date.ISO(), r.Details)
			}
			cmd.Printf("Total: %d record(s)\n", len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "filter by transaction type (profit or loss)")
	cmd.Flags().StringVar(&dateFlag, "date", "", "filter by date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&year, "year", 0, "year for --month (defaults to the current year)")
	cmd.Flags().IntVar(&month, "month", 0, "filter by month (1-12)")
	return cmd
}
