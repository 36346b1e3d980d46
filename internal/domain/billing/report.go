package billing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SourceTotals is the per-source converted sum plus, for foreign sources, the
// raw foreign sum.
type SourceTotals struct {
	Amount decimal.Decimal `json:"amount"`
	Raw    decimal.Decimal `json:"raw"`
}

// Summary is the rollup of many entries.
type Summary struct {
	TotalEntries     int                         `json:"total_entries"`
	DraftCount       int                         `json:"draft_count"`
	SubmittedCount   int                         `json:"submitted_count"`
	Sources          map[SourceCode]SourceTotals `json:"sources"`
	TotalCommission  decimal.Decimal             `json:"total_commission"`
	TotalGST         decimal.Decimal             `json:"total_gst"`
	TotalInvoice     decimal.Decimal             `json:"total_invoice"`
	TotalOutstanding decimal.Decimal             `json:"total_outstanding"`
}

// Source returns the totals for code; absent sources read as zero.
func (s Summary) Source(code SourceCode) SourceTotals {
	return s.Sources[code]
}

// Aggregate folds entries into a Summary. The result does not depend on the
// order of entries.
func Aggregate(entries []*Entry) Summary {
	sum := Summary{
		Sources:          make(map[SourceCode]SourceTotals, len(Sources)),
		TotalCommission:  decimal.Zero,
		TotalGST:         decimal.Zero,
		TotalInvoice:     decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, src := range Sources {
		sum.Sources[src.Code] = SourceTotals{Amount: decimal.Zero, Raw: decimal.Zero}
	}

	for _, e := range entries {
		if e == nil {
			continue
		}
		sum.TotalEntries++
		switch e.Status {
		case StatusSubmitted:
			sum.SubmittedCount++
		default:
			sum.DraftCount++
		}
		for _, l := range e.Lines {
			t := sum.Sources[l.Source]
			t.Amount = t.Amount.Add(l.Amount)
			t.Raw = t.Raw.Add(l.Raw)
			sum.Sources[l.Source] = t
		}
		sum.TotalCommission = sum.TotalCommission.Add(e.TotalCommission)
		sum.TotalGST = sum.TotalGST.Add(e.GST)
		sum.TotalInvoice = sum.TotalInvoice.Add(e.TotalInvoice)
		sum.TotalOutstanding = sum.TotalOutstanding.Add(e.Outstanding.Total)
	}
	return sum
}

// ClientReport is one client's view of a financial year.
type ClientReport struct {
	ClientID      string        `json:"client_id"`
	FinancialYear FinancialYear `json:"financial_year"`
	Entries       []*Entry      `json:"entries"`
	Summary       Summary       `json:"summary"`
}

// AggregateClient keeps the entries of clientID in fy, sorts them in
// financial-year month order and folds them.
func AggregateClient(clientID string, fy FinancialYear, entries []*Entry) ClientReport {
	kept := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e == nil || e.ClientID != clientID || e.FinancialYear.StartYear != fy.StartYear {
			continue
		}
		kept = append(kept, e)
	}
	SortByMonth(kept)
	return ClientReport{
		ClientID:      clientID,
		FinancialYear: fy,
		Entries:       kept,
		Summary:       Aggregate(kept),
	}
}

// SortByMonth orders entries by financial year then month.
func SortByMonth(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.FinancialYear.StartYear != b.FinancialYear.StartYear {
			return a.FinancialYear.StartYear < b.FinancialYear.StartYear
		}
		return a.Month.Index() < b.Month.Index()
	})
}

// SortByClientName orders entries by client name, then month, then client id.
func SortByClientName(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		an, bn := strings.ToLower(a.ClientName), strings.ToLower(b.ClientName)
		if an != bn {
			return an < bn
		}
		if a.FinancialYear.StartYear != b.FinancialYear.StartYear {
			return a.FinancialYear.StartYear < b.FinancialYear.StartYear
		}
		if a.Month.Index() != b.Month.Index() {
			return a.Month.Index() < b.Month.Index()
		}
		return a.ClientID < b.ClientID
	})
}

//Personal.AI order the ending
