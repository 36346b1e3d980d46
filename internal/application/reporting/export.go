package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Kind names one CSV export.
type Kind string

const (
	KindClientMaster Kind = "client-master"
	KindRoyalty      Kind = "royalty"
	KindCommission   Kind = "commission"
	KindGST          Kind = "gst"
	KindInvoice      Kind = "invoice"
	KindOutstanding  Kind = "outstanding"
)

// Kinds lists every export in menu order.
var Kinds = []Kind{KindClientMaster, KindRoyalty, KindCommission, KindGST, KindInvoice, KindOutstanding}

// MonthlyKinds are the exports regenerated whenever a month changes.
var MonthlyKinds = []Kind{KindRoyalty, KindCommission, KindGST, KindInvoice, KindOutstanding}

const invoiceDateLayout = "02/01/2006"

var titles = map[Kind]string{
	KindRoyalty:     "Royalty",
	KindCommission:  "Commission",
	KindGST:         "GST",
	KindInvoice:     "Invoice",
	KindOutstanding: "Outstanding",
}

var headers = map[Kind][]string{
	KindClientMaster: {"Client ID", "Client Name", "Type", "Service Fee"},
	KindRoyalty:      {"Client ID", "Client Name", "Month", "IPRS", "PRS GBP", "PRS INR", "Sound Ex", "ISAMRA", "ASCAP", "PPL", "Total"},
	KindCommission:   {"Client ID", "Client Name", "Month", "Fee %", "IPRS Comis", "PRS Comis", "Sound Ex", "ISAMRA", "ASCAP", "PPL", "Total Commission"},
	KindGST:          {"Client ID", "Client Name", "Month", "Total Commission", "GST %", "GST Amount", "Total Invoice"},
	KindInvoice:      {"Client ID", "Client Name", "Month", "Invoice Number", "Invoice Value", "Status", "Date"},
	KindOutstanding:  {"Client ID", "Client Name", "Month", "Previous Outstanding", "Operator", "Current Outstanding", "Total Outstanding"},
}

// ParseKind validates an export name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := headers[k]; !ok {
		return "", errors.Newf(errors.ErrCodeExportKindUnsupported, "unsupported export kind %q", s)
	}
	return k, nil
}

// Monthly reports whether k is scoped to one month.
func (k Kind) Monthly() bool {
	return k != KindClientMaster
}

// Filename is the download name of an export.
func Filename(k Kind, month domainbilling.Month) string {
	if !k.Monthly() {
		return "MRM_Client_Master_Report.csv"
	}
	return fmt.Sprintf("MRM_%s_Report_%s.csv", titles[k], month)
}

// Data is the input of one render. Monthly exports read Entries; the client
// master reads Clients.
type Data struct {
	Clients []*client.Client
	Entries []*domainbilling.Entry
}

// Exporter renders CSV exports. It holds no state.
type Exporter struct{}

func NewExporter() Exporter { return Exporter{} }

// Render writes the header line followed by one row per client or entry,
// ordered by name.
func (Exporter) Render(kind Kind, data Data) ([]byte, error) {
	header, ok := headers[kind]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeExportKindUnsupported, "unsupported export kind %q", kind)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to write export header")
	}

	var rows [][]string
	if kind == KindClientMaster {
		rows = clientRows(data.Clients)
	} else {
		entries := append([]*domainbilling.Entry(nil), data.Entries...)
		domainbilling.SortByClientName(entries)
		for _, e := range entries {
			if e != nil {
				rows = append(rows, entryRow(kind, e))
			}
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to write export rows")
	}
	return buf.Bytes(), nil
}

func clientRows(clients []*client.Client) [][]string {
	sorted := append([]*client.Client(nil), clients...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	rows := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		if c == nil {
			continue
		}
		rows = append(rows, []string{c.ClientID, c.Name, string(c.Category), percent(c.Fee)})
	}
	return rows
}

func entryRow(kind Kind, e *domainbilling.Entry) []string {
	row := []string{e.ClientID, e.ClientName, e.MonthLabel}
	switch kind {
	case KindRoyalty:
		total := decimal.Zero
		for _, l := range e.Lines {
			total = total.Add(l.Amount)
		}
		row = append(row,
			money(e.Line(domainbilling.SourceIPRS).Amount),
			money(e.Line(domainbilling.SourcePRS).Raw),
			money(e.Line(domainbilling.SourcePRS).Amount),
			money(e.Line(domainbilling.SourceSoundEx).Amount),
			money(e.Line(domainbilling.SourceISAMRA).Amount),
			money(e.Line(domainbilling.SourceASCAP).Amount),
			money(e.Line(domainbilling.SourcePPL).Amount),
			money(total),
		)
	case KindCommission:
		row = append(row, percent(e.ServiceFee))
		for _, code := range []domainbilling.SourceCode{
			domainbilling.SourceIPRS, domainbilling.SourcePRS, domainbilling.SourceSoundEx,
			domainbilling.SourceISAMRA, domainbilling.SourceASCAP, domainbilling.SourcePPL,
		} {
			row = append(row, money(e.Line(code).Commission))
		}
		row = append(row, money(e.TotalCommission))
	case KindGST:
		row = append(row, money(e.TotalCommission), percent(e.GSTRate), money(e.GST), money(e.TotalInvoice))
	case KindInvoice:
		date := "-"
		if !e.InvoiceDate.IsZero() {
			date = e.InvoiceDate.Format(invoiceDateLayout)
		}
		row = append(row, e.InvoiceNumber, money(e.TotalInvoice), string(e.InvoiceStatus), date)
	case KindOutstanding:
		row = append(row,
			money(e.Outstanding.Previous),
			string(e.Outstanding.Operator),
			money(e.Outstanding.Current),
			money(e.Outstanding.Total),
		)
	}
	return row
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).Round(0).String() + "%"
}

//Personal.AI order the ending
