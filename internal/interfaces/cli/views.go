package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	domainbilling "github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// entryTable lists entries one per row.
type entryTable []*domainbilling.Entry

func (t entryTable) JSONValue() interface{} { return []*domainbilling.Entry(t) }

func (t entryTable) TableHeaders() []string {
	return []string{"CLIENT", "NAME", "MONTH", "FY", "COMMISSION", "GST", "INVOICE", "OUTSTANDING", "STATUS", "INVOICE STATUS"}
}

func (t entryTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{
			e.ClientID, e.ClientName, e.MonthLabel, e.FinancialYear.Short(),
			money(e.TotalCommission), money(e.GST), money(e.TotalInvoice), money(e.Outstanding.Total),
			string(e.Status), string(e.InvoiceStatus),
		})
	}
	return rows
}

// entryDetail shows one entry as field/value pairs followed by its source lines.
type entryDetail struct {
	entry *domainbilling.Entry
}

func (d entryDetail) JSONValue() interface{} { return d.entry }

func (d entryDetail) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

func (d entryDetail) TableRows() [][]string {
	e := d.entry
	rows := [][]string{
		{"Client", fmt.Sprintf("%s (%s)", e.ClientName, e.ClientID)},
		{"Month", e.MonthLabel},
		{"Financial year", e.FinancialYear.String()},
		{"Service fee", e.ServiceFee.Mul(decimal.NewFromInt(100)).String() + "%"},
	}
	for _, l := range e.Lines {
		src, _ := domainbilling.LookupSource(l.Source)
		value := money(l.Amount)
		if src.Foreign() {
			value = fmt.Sprintf("%s (%s %s @ %s)", money(l.Amount), money(l.Raw), l.Currency, l.Rate.String())
		}
		rows = append(rows, []string{src.Name, value + ", commission " + money(l.Commission)})
	}
	rows = append(rows,
		[]string{"Total commission", money(e.TotalCommission)},
		[]string{"GST", money(e.GST)},
		[]string{"Total invoice", money(e.TotalInvoice)},
		[]string{"Outstanding", fmt.Sprintf("%s %s %s = %s", money(e.Outstanding.Previous), e.Outstanding.Operator, money(e.Outstanding.Current), money(e.Outstanding.Total))},
		[]string{"Invoice", fmt.Sprintf("%s (%s)", e.InvoiceNumber, e.InvoiceStatus)},
		[]string{"Status", string(e.Status)},
	)
	return rows
}

// summaryView renders a Summary by source with the totals underneath.
type summaryView struct {
	Scope   string                 `json:"scope"`
	Summary *domainbilling.Summary `json:"summary"`
}

func (v summaryView) JSONValue() interface{} { return v }

func (v summaryView) TableHeaders() []string { return []string{"SOURCE", "AMOUNT", "RAW"} }

func (v summaryView) TableRows() [][]string {
	s := v.Summary
	rows := make([][]string, 0, len(domainbilling.Sources)+7)
	for _, src := range domainbilling.Sources {
		t := s.Source(src.Code)
		raw := ""
		if src.Foreign() {
			raw = money(t.Raw) + " " + string(src.Currency)
		}
		rows = append(rows, []string{src.Name, money(t.Amount), raw})
	}
	rows = append(rows,
		[]string{"Entries", strconv.Itoa(s.TotalEntries), fmt.Sprintf("%d draft, %d submitted", s.DraftCount, s.SubmittedCount)},
		[]string{"Commission", money(s.TotalCommission), ""},
		[]string{"GST", money(s.TotalGST), ""},
		[]string{"Invoice", money(s.TotalInvoice), ""},
		[]string{"Outstanding", money(s.TotalOutstanding), ""},
	)
	return rows
}

// clientTable lists the roster.
type clientTable []*client.Client

func (t clientTable) JSONValue() interface{} { return []*client.Client(t) }

func (t clientTable) TableHeaders() []string {
	return []string{"CLIENT", "NAME", "CATEGORY", "FEE", "ACTIVE"}
}

func (t clientTable) TableRows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, c := range t {
		rows = append(rows, []string{c.ClientID, c.Name, string(c.Category), c.Fee.String(), strconv.FormatBool(c.IsActive)})
	}
	return rows
}

//Personal.AI order the ending
