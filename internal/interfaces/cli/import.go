package cli

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	appbilling "github.com/turtacn/MRM-Billing/internal/application/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// NewImportCmd loads entries from the legacy per-client ledger.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import billing history",
	}

	var (
		file    string
		gbpRate string
	)
	legacy := &cobra.Command{
		Use:   "legacy",
		Short: "Import the legacy monthly ledger CSV; existing entries are skipped",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to open import file")
			}
			defer f.Close()

			rows, err := appbilling.ParseLegacyCSV(f)
			if err != nil {
				return err
			}
			return withBackend(cmd, func(ctx context.Context, cliCtx *CLIContext, b *Backend) error {
				res, err := b.Billing.ImportLegacy(ctx, rows, appbilling.ImportOptions{GBPToINRRate: gbpRate})
				if err != nil {
					return err
				}
				cliCtx.Logger.Info("legacy import finished",
					logging.String("file", file),
					logging.Int("created", res.Created),
					logging.Int("skipped", res.Skipped),
					logging.Int("failed", res.Failed))
				return PrintResult(cmd, importView{res})
			})
		},
	}
	legacy.Flags().StringVarP(&file, "file", "f", "", "legacy CSV file (required)")
	legacy.Flags().StringVar(&gbpRate, "gbp-rate", "", "GBP to INR rate (default "+appbilling.LegacyGBPToINRRate+")")
	_ = legacy.MarkFlagRequired("file")

	cmd.AddCommand(legacy)
	return cmd
}

type importView struct {
	res *appbilling.ImportResult
}

func (v importView) JSONValue() interface{} { return v.res }

func (v importView) TableHeaders() []string {
	return []string{"ROW", "CLIENT", "PERIOD", "RESULT"}
}

func (v importView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.res.Errors)+1)
	for _, e := range v.res.Errors {
		rows = append(rows, []string{strconv.Itoa(e.Row), e.ClientID, e.Period, e.Message})
	}
	rows = append(rows, []string{"", "", "TOTAL",
		strconv.Itoa(v.res.Created) + " created, " + strconv.Itoa(v.res.Skipped) + " skipped, " + strconv.Itoa(v.res.Failed) + " failed"})
	return rows
}

//Personal.AI order the ending
