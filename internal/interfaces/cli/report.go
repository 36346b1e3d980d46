package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/MRM-Billing/internal/application/reporting"
	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly summaries, client statements and CSV exports",
	}
	reportCmd.AddCommand(
		newReportSummaryCmd(),
		newReportClientCmd(),
		newReportExportCmd(),
		newReportPublishCmd(),
	)
	return reportCmd
}

func newReportSummaryCmd() *cobra.Command {
	var (
		month string
		fy    int
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Totals of one month across all clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domainbilling.ParseMonth(month)
			if err != nil {
				return err
			}
			return withBackend(cmd, func(ctx context.Context, _ *CLIContext, b *Backend) error {
				s, err := b.Billing.Summary(ctx, m, fy)
				if err != nil {
					return err
				}
				return PrintResult(cmd, summaryView{Scope: string(m), Summary: s})
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month code (required)")
	cmd.Flags().IntVar(&fy, "fy", 0, "financial year start")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

// clientReportView prints the statement entries followed by the year totals.
type clientReportView struct {
	report *domainbilling.ClientReport
}

func (v clientReportView) JSONValue() interface{} { return v.report }

func (v clientReportView) TableHeaders() []string { return entryTable(nil).TableHeaders() }

func (v clientReportView) TableRows() [][]string {
	rows := entryTable(v.report.Entries).TableRows()
	s := v.report.Summary
	return append(rows, []string{
		v.report.ClientID, "TOTAL", "", v.report.FinancialYear.Short(),
		money(s.TotalCommission), money(s.TotalGST), money(s.TotalInvoice), money(s.TotalOutstanding),
		strconv.Itoa(s.TotalEntries) + " entries", "",
	})
}

func newReportClientCmd() *cobra.Command {
	var (
		clientID string
		fy       int
	)
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Statement of one client for a financial year",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, _ *CLIContext, b *Backend) error {
				r, err := b.Billing.ClientReport(ctx, clientID, fy)
				if err != nil {
					return err
				}
				return PrintResult(cmd, clientReportView{report: r})
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id (required)")
	cmd.Flags().IntVar(&fy, "fy", 0, "financial year start")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

// publishTable lists archived exports.
type publishTable []*reporting.PublishResult

func (t publishTable) JSONValue() interface{} { return []*reporting.PublishResult(t) }

func (t publishTable) TableHeaders() []string {
	return []string{"KIND", "BUCKET", "OBJECT", "SIZE"}
}

func (t publishTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{string(r.Kind), r.Bucket, r.ObjectKey, strconv.FormatInt(r.Size, 10)})
	}
	return rows
}

func newReportExportCmd() *cobra.Command {
	var (
		month   string
		fy      int
		outDir  string
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "export KIND",
		Short: "Render one CSV export (client-master, royalty, commission, gst, invoice, outstanding)",
		Example: `  mrm report export gst --month apr --out ./exports
  mrm report export client-master
  mrm report export invoice --month apr --publish`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := reporting.ParseKind(args[0])
			if err != nil {
				return err
			}
			m := domainbilling.Month(month)
			if kind.Monthly() {
				if m, err = domainbilling.ParseMonth(month); err != nil {
					return err
				}
			}
			return withBackend(cmd, func(ctx context.Context, cliCtx *CLIContext, b *Backend) error {
				if publish {
					res, err := b.Exports.Publish(ctx, kind, m, fy)
					if err != nil {
						return err
					}
					return PrintResult(cmd, publishTable{res})
				}
				exp, err := b.Exports.Render(ctx, kind, m, fy)
				if err != nil {
					return err
				}
				if outDir == "" {
					_, err = cmd.OutOrStdout().Write(exp.Data)
					return err
				}
				path := filepath.Join(outDir, exp.Filename)
				if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
					return errors.Wrap(err, errors.ErrCodeInternal, "failed to write export file")
				}
				cliCtx.Logger.Info("export written", logging.String("path", path), logging.Int("bytes", len(exp.Data)))
				PrintSuccess(cmd, fmt.Sprintf("%s written to %s", kind, path))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&month, "month", "", "month code (monthly exports)")
	f.IntVar(&fy, "fy", 0, "financial year start")
	f.StringVar(&outDir, "out", "", "directory to write the CSV into (default: stdout)")
	f.BoolVar(&publish, "publish", false, "upload to object storage instead of writing locally")
	cmd.MarkFlagsMutuallyExclusive("out", "publish")
	return cmd
}

func newReportPublishCmd() *cobra.Command {
	var (
		month string
		fy    int
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Regenerate and upload every monthly export of a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domainbilling.ParseMonth(month)
			if err != nil {
				return err
			}
			return withBackend(cmd, func(ctx context.Context, _ *CLIContext, b *Backend) error {
				results, err := b.Exports.PublishMonth(ctx, m, fy)
				if err != nil {
					return err
				}
				return PrintResult(cmd, publishTable(results))
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month code (required)")
	cmd.Flags().IntVar(&fy, "fy", 0, "financial year start")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

//Personal.AI order the ending
