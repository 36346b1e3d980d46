package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	appbilling "github.com/turtacn/MRM-Billing/internal/application/billing"
	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

type entryKeyOptions struct {
	ClientID string
	Month    string
	FYStart  int
}

func (o *entryKeyOptions) bind(cmd *cobra.Command, requireClient bool) {
	cmd.Flags().StringVar(&o.ClientID, "client", "", "client id")
	cmd.Flags().StringVar(&o.Month, "month", "", "month code (apr .. mar)")
	cmd.Flags().IntVar(&o.FYStart, "fy", 0, "financial year start (default: current settings)")
	if requireClient {
		_ = cmd.MarkFlagRequired("client")
	}
	_ = cmd.MarkFlagRequired("month")
}

// key resolves the entry key, filling the financial year from settings.
func (o *entryKeyOptions) key(ctx context.Context, b *Backend) (domainbilling.Key, error) {
	fy := o.FYStart
	if fy == 0 {
		cur, err := b.Billing.CurrentFinancialYear(ctx)
		if err != nil {
			return domainbilling.Key{}, err
		}
		fy = cur.StartYear
	}
	return domainbilling.NewKey(o.ClientID, o.Month, fy)
}

// NewEntryCmd groups the billing entry commands.
func NewEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Create, inspect and list monthly billing entries",
	}
	cmd.AddCommand(
		newEntrySaveCmd(),
		newEntryGetCmd(),
		newEntryListCmd(),
		newEntryStatusCmd(),
		newEntryDeleteCmd(),
	)
	return cmd
}

type entrySaveOptions struct {
	entryKeyOptions
	Amounts       map[string]string
	GBPRate       string
	USDRate       string
	Previous      string
	Current       string
	Operator      string
	IPRSRemarks   string
	PRSRemarks    string
	InvoiceDate   string
	InvoiceNumber string
	InvoiceStatus string
	Status        string
}

func (o *entrySaveOptions) input(cmd *cobra.Command) (*appbilling.SaveEntryInput, error) {
	in := &appbilling.SaveEntryInput{
		ClientID:           o.ClientID,
		Month:              o.Month,
		FYStart:            o.FYStart,
		Amounts:            make(map[domainbilling.SourceCode]string, len(o.Amounts)),
		GBPToINRRate:       o.GBPRate,
		USDToINRRate:       o.USDRate,
		CurrentOutstanding: o.Current,
		Operator:           o.Operator,
		IPRSRemarks:        o.IPRSRemarks,
		PRSRemarks:         o.PRSRemarks,
		InvoiceDate:        o.InvoiceDate,
		InvoiceNumber:      o.InvoiceNumber,
		InvoiceStatus:      o.InvoiceStatus,
		Status:             o.Status,
	}
	for code, amount := range o.Amounts {
		sc := domainbilling.SourceCode(strings.ToLower(strings.TrimSpace(code)))
		if _, ok := domainbilling.LookupSource(sc); !ok {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown royalty source %q", code))
		}
		in.Amounts[sc] = amount
	}
	if cmd.Flags().Changed("previous") {
		prev := o.Previous
		in.PreviousOutstanding = &prev
	}
	return in, nil
}

func newEntrySaveCmd() *cobra.Command {
	opts := &entrySaveOptions{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save (create or replace) the entry of a client and month",
		Example: `  mrm entry save --client C001 --month apr --amount iprs=1000 --amount prs=10
  mrm entry save --client C001 --month may --fy 2025 --current 500 --operator -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.input(cmd)
			if err != nil {
				return err
			}
			return withBackend(cmd, func(ctx context.Context, cliCtx *CLIContext, b *Backend) error {
				res, err := b.Billing.Save(ctx, in)
				if err != nil {
					return err
				}
				state := appbilling.NewState(nil).UpsertEntry(res.Entry)
				msg := "entry saved"
				if res.Replaced {
					msg = "entry replaced"
				}
				state = state.Notify(appbilling.NoticeSuccess, fmt.Sprintf("%s: %s", msg, res.Entry.Key()))
				if cliCtx.OutputFormat == "json" {
					return PrintResult(cmd, res)
				}
				if n, ok := state.Notice(); ok {
					PrintSuccess(cmd, n.Message)
				}
				return PrintResult(cmd, entryDetail{entry: res.Entry})
			})
		},
	}
	opts.bind(cmd, true)
	f := cmd.Flags()
	f.StringToStringVar(&opts.Amounts, "amount", nil, "royalty per source, e.g. iprs=1000 (repeatable)")
	f.StringVar(&opts.GBPRate, "gbp-rate", "", "GBP to INR rate for this entry")
	f.StringVar(&opts.USDRate, "usd-rate", "", "USD to INR rate for this entry")
	f.StringVar(&opts.Previous, "previous", "", "previous outstanding (default: carried in from the previous month)")
	f.StringVar(&opts.Current, "current", "", "current outstanding")
	f.StringVar(&opts.Operator, "operator", "+", "outstanding operator (+ or -)")
	f.StringVar(&opts.IPRSRemarks, "iprs-remarks", "", "IPRS remarks")
	f.StringVar(&opts.PRSRemarks, "prs-remarks", "", "PRS remarks")
	f.StringVar(&opts.InvoiceDate, "invoice-date", "", "invoice date (YYYY-MM-DD)")
	f.StringVar(&opts.InvoiceNumber, "invoice-number", "", "invoice number (default: generated)")
	f.StringVar(&opts.InvoiceStatus, "invoice-status", "", "invoice status")
	f.StringVar(&opts.Status, "status", "", "entry status (draft or submitted)")
	return cmd
}

func newEntryGetCmd() *cobra.Command {
	opts := &entryKeyOptions{}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show one entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, _ *CLIContext, b *Backend) error {
				key, err := opts.key(ctx, b)
				if err != nil {
					return err
				}
				e, err := b.Billing.Get(ctx, key)
				if err != nil {
					return err
				}
				return PrintResult(cmd, entryDetail{entry: e})
			})
		},
	}
	opts.bind(cmd, true)
	return cmd
}

func newEntryListCmd() *cobra.Command {
	var (
		month    string
		clientID string
		status   string
		fy       int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries of a month, or of a client across the year",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, _ *CLIContext, b *Backend) error {
				filter := domainbilling.EntryFilter{ClientID: clientID, FYStart: fy}
				if month != "" {
					m, err := domainbilling.ParseMonth(month)
					if err != nil {
						return err
					}
					filter.Month = m
				}
				if status != "" {
					st, err := domainbilling.ParseStatus(status)
					if err != nil {
						return err
					}
					filter.Status = st
				}
				entries, err := b.Billing.List(ctx, filter)
				if err != nil {
					return err
				}
				if filter.Month == "" {
					domainbilling.SortByMonth(entries)
					return PrintResult(cmd, entryTable(entries))
				}

				cur, err := b.Settings.Current(ctx)
				if err != nil {
					return err
				}
				set := *cur
				if fy != 0 {
					set.FinancialYear = domainbilling.NewFinancialYear(fy)
				}
				state := appbilling.NewState(&set).WithEntries(entries).SelectMonth(filter.Month)
				return PrintResult(cmd, entryTable(state.MonthEntries()))
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&month, "month", "", "month code")
	f.StringVar(&clientID, "client", "", "client id")
	f.StringVar(&status, "status", "", "entry status")
	f.IntVar(&fy, "fy", 0, "financial year start")
	return cmd
}

func newEntryStatusCmd() *cobra.Command {
	opts := &entryKeyOptions{}
	var status, invoiceStatus string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Change the entry or invoice status of an entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			var update domainbilling.StatusUpdate
			if status != "" {
				st, err := domainbilling.ParseStatus(status)
				if err != nil {
					return err
				}
				update.Status = &st
			}
			if invoiceStatus != "" {
				st, err := domainbilling.ParseInvoiceStatus(invoiceStatus)
				if err != nil {
					return err
				}
				update.InvoiceStatus = &st
			}
			if update.Empty() {
				return errors.NewValidationError("--status or --invoice-status is required")
			}
			return withBackend(cmd, func(ctx context.Context, _ *CLIContext, b *Backend) error {
				key, err := opts.key(ctx, b)
				if err != nil {
					return err
				}
				e, err := b.Billing.UpdateStatus(ctx, key, update)
				if err != nil {
					return err
				}
				return PrintResult(cmd, entryTable{e})
			})
		},
	}
	opts.bind(cmd, true)
	cmd.Flags().StringVar(&status, "status", "", "entry status")
	cmd.Flags().StringVar(&invoiceStatus, "invoice-status", "", "invoice status")
	return cmd
}

func newEntryDeleteCmd() *cobra.Command {
	opts := &entryKeyOptions{}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, _ *CLIContext, b *Backend) error {
				key, err := opts.key(ctx, b)
				if err != nil {
					return err
				}
				if err := b.Billing.Delete(ctx, key); err != nil {
					return err
				}
				PrintSuccess(cmd, "entry deleted: "+key.String())
				return nil
			})
		},
	}
	opts.bind(cmd, true)
	return cmd
}

//Personal.AI order the ending
