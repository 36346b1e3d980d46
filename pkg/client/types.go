package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceLine is one royalty source of an entry, converted to INR.
type SourceLine struct {
	Source     string          `json:"source"`
	Currency   string          `json:"currency"`
	Raw        decimal.Decimal `json:"raw"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	Commission decimal.Decimal `json:"commission"`
}

type FinancialYear struct {
	StartYear int `json:"start_year"`
	EndYear   int `json:"end_year"`
}

// Entry is a billing entry as returned by the API.
type Entry struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id"`
	ClientName    string          `json:"client_name"`
	Month         string          `json:"month"`
	MonthLabel    string          `json:"month_label"`
	FinancialYear FinancialYear   `json:"financial_year"`
	ServiceFee    decimal.Decimal `json:"service_fee"`
	Lines         []SourceLine    `json:"lines"`

	TotalCommission decimal.Decimal `json:"total_commission"`
	GSTRate         decimal.Decimal `json:"gst_rate"`
	GST             decimal.Decimal `json:"gst"`
	TotalInvoice    decimal.Decimal `json:"total_invoice"`

	PreviousOutstanding decimal.Decimal `json:"previous_outstanding"`
	CurrentOutstanding  decimal.Decimal `json:"current_outstanding"`
	OutstandingOperator string          `json:"outstanding_operator"`
	TotalOutstanding    decimal.Decimal `json:"total_outstanding"`

	IPRSRemarks   string    `json:"iprs_remarks"`
	PRSRemarks    string    `json:"prs_remarks"`
	InvoiceDate   time.Time `json:"invoice_date"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	InvoiceStatus string    `json:"invoice_status"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Line returns the line of source, or a zero line.
func (e *Entry) Line(source string) SourceLine {
	for _, l := range e.Lines {
		if l.Source == source {
			return l
		}
	}
	return SourceLine{Source: source}
}

// SaveEntryRequest creates or replaces the entry of (client, month, FY).
// Amounts are decimal strings keyed by source code (iprs, prs, soundex,
// isamra, ascap, ppl). A nil PreviousOutstanding lets the server carry the
// prior month's total in.
type SaveEntryRequest struct {
	ClientID string            `json:"client_id"`
	Month    string            `json:"month"`
	FYStart  int               `json:"fy_start,omitempty"`
	Amounts  map[string]string `json:"amounts"`

	GBPToINRRate string `json:"gbp_to_inr_rate,omitempty"`
	USDToINRRate string `json:"usd_to_inr_rate,omitempty"`

	PreviousOutstanding *string `json:"previous_outstanding,omitempty"`
	CurrentOutstanding  string  `json:"current_outstanding,omitempty"`
	Operator            string  `json:"outstanding_operator,omitempty"`

	IPRSRemarks   string `json:"iprs_remarks,omitempty"`
	PRSRemarks    string `json:"prs_remarks,omitempty"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceStatus string `json:"invoice_status,omitempty"`
	Status        string `json:"status,omitempty"`
}

type SaveEntryResponse struct {
	Entry    *Entry `json:"data"`
	Replaced bool   `json:"replaced"`
}

// StatusUpdate changes the lifecycle fields of an entry. Blank fields are left
// unchanged.
type StatusUpdate struct {
	Status        string `json:"status,omitempty"`
	InvoiceStatus string `json:"invoice_status,omitempty"`
}

// EntryKey addresses one entry. FYStart 0 means the server's current year.
type EntryKey struct {
	ClientID string
	Month    string
	FYStart  int
}

// ListOptions filters GET /billing.
type ListOptions struct {
	Month    string
	ClientID string
	Status   string
	FYStart  int
}

type CarryIn struct {
	ClientID            string          `json:"client_id"`
	Month               string          `json:"month"`
	FinancialYear       int             `json:"financial_year"`
	PreviousOutstanding decimal.Decimal `json:"previous_outstanding"`
}

type SourceTotals struct {
	Amount decimal.Decimal `json:"amount"`
	Raw    decimal.Decimal `json:"raw"`
}

// Summary aggregates a month or a whole financial year.
type Summary struct {
	TotalEntries     int                     `json:"total_entries"`
	DraftCount       int                     `json:"draft_count"`
	SubmittedCount   int                     `json:"submitted_count"`
	Sources          map[string]SourceTotals `json:"sources"`
	TotalCommission  decimal.Decimal         `json:"total_commission"`
	TotalGST         decimal.Decimal         `json:"total_gst"`
	TotalInvoice     decimal.Decimal         `json:"total_invoice"`
	TotalOutstanding decimal.Decimal         `json:"total_outstanding"`
}

type ClientReport struct {
	ClientID      string        `json:"client_id"`
	FinancialYear FinancialYear `json:"financial_year"`
	Entries       []*Entry      `json:"entries"`
	Summary       Summary       `json:"summary"`
}

// Export is a downloaded CSV.
type Export struct {
	Kind     string
	Filename string
	Data     []byte
}

type PublishResult struct {
	Kind        string    `json:"kind"`
	Filename    string    `json:"filename"`
	Bucket      string    `json:"bucket"`
	ObjectKey   string    `json:"object_key"`
	Size        int64     `json:"size"`
	ETag        string    `json:"etag,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type BankDetails struct {
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	Branch        string `json:"branch,omitempty"`
}

// RosterClient is a client of the roster.
type RosterClient struct {
	ClientID  string          `json:"client_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Fee       decimal.Decimal `json:"fee"`
	IsActive  bool            `json:"is_active"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Address   string          `json:"address,omitempty"`
	PAN       string          `json:"pan,omitempty"`
	GSTIN     string          `json:"gstin,omitempty"`
	Bank      BankDetails     `json:"bank_details"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

//Personal.AI order the ending
