package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Key is the natural identity of a billing entry: one client, one month, one
// financial year.
type Key struct {
	ClientID string `json:"client_id"`
	Month    Month  `json:"month"`
	FYStart  int    `json:"fy_start"`
}

// NewKey validates and builds a Key.
func NewKey(clientID string, month string, fyStart int) (Key, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return Key{}, err
	}
	k := Key{ClientID: strings.TrimSpace(clientID), Month: m, FYStart: fyStart}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}

// Validate checks every component of the key.
func (k Key) Validate() error {
	if k.ClientID == "" {
		return errors.NewValidationError("client id is required")
	}
	if !k.Month.Valid() {
		return errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", k.Month)
	}
	if k.FYStart <= 0 {
		return errors.NewValidationError("financial year start is required")
	}
	return nil
}

// String renders "<client>_<month>_<fyStart>".
func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%d", k.ClientID, k.Month, k.FYStart)
}

// FinancialYear returns the financial year of the key.
func (k Key) FinancialYear() FinancialYear {
	return NewFinancialYear(k.FYStart)
}

// Previous returns the key of the calendar-preceding month for the same client.
func (k Key) Previous() Key {
	m, fy := k.Month.Previous(k.FYStart)
	return Key{ClientID: k.ClientID, Month: m, FYStart: fy}
}

// SourceLine is the per-source block of an entry. Raw is the amount in the
// source's own currency, Rate the conversion rate captured at save time and
// Amount the converted local-currency value. Local sources carry Rate = 1.
type SourceLine struct {
	Source     SourceCode      `json:"source"`
	Currency   Currency        `json:"currency"`
	Raw        decimal.Decimal `json:"raw"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	Commission decimal.Decimal `json:"commission"`
}

// InvoiceTotals is the output of the totals stage.
type InvoiceTotals struct {
	TotalCommission decimal.Decimal `json:"total_commission"`
	GST             decimal.Decimal `json:"gst"`
	TotalInvoice    decimal.Decimal `json:"total_invoice"`
}

// Entry is one client's royalty billing record for one month.
type Entry struct {
	ID            string        `json:"id"`
	ClientID      string        `json:"client_id"`
	ClientName    string        `json:"client_name"`
	Month         Month         `json:"month"`
	MonthLabel    string        `json:"month_label"`
	FinancialYear FinancialYear `json:"financial_year"`

	// ServiceFee is the client's fee ratio snapshotted at save time.
	ServiceFee decimal.Decimal `json:"service_fee"`
	Lines      []SourceLine    `json:"lines"`

	InvoiceTotals
	GSTRate decimal.Decimal `json:"gst_rate"`

	Outstanding

	IPRSRemarks string `json:"iprs_remarks"`
	PRSRemarks  string `json:"prs_remarks"`

	InvoiceDate   time.Time     `json:"invoice_date"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	InvoiceStatus InvoiceStatus `json:"invoice_status"`
	Status        Status        `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the natural key of e.
func (e *Entry) Key() Key {
	return Key{ClientID: e.ClientID, Month: e.Month, FYStart: e.FinancialYear.StartYear}
}

// Line returns the line for code. A missing line reads as all zeros.
func (e *Entry) Line(code SourceCode) SourceLine {
	for _, l := range e.Lines {
		if l.Source == code {
			return l
		}
	}
	return SourceLine{Source: code}
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Lines = append([]SourceLine(nil), e.Lines...)
	return &c
}

// CheckDerived verifies that every derived field agrees with the raw inputs.
// Repositories call it before writing so that partially built entries never
// reach storage; it never modifies e.
func (e *Entry) CheckDerived() error {
	if e == nil {
		return errors.New(errors.ErrCodeEntryNotDerived, "billing entry is nil")
	}
	if err := e.Key().Validate(); err != nil {
		return err
	}
	if err := e.FinancialYear.Validate(); err != nil {
		return err
	}
	if err := ValidateFee(e.ServiceFee); err != nil {
		return err
	}
	if !e.Status.Valid() || !e.InvoiceStatus.Valid() {
		return errors.New(errors.ErrCodeInvalidStatus, "billing entry carries an unknown status")
	}
	if !e.Outstanding.Operator.Valid() {
		return errors.New(errors.ErrCodeInvalidOperator, "billing entry carries an unknown outstanding operator")
	}
	if len(e.Lines) != len(Sources) {
		return errors.Newf(errors.ErrCodeEntryNotDerived, "billing entry has %d source lines, want %d", len(e.Lines), len(Sources))
	}

	commissions := make([]decimal.Decimal, 0, len(e.Lines))
	for i, src := range Sources {
		l := e.Lines[i]
		if l.Source != src.Code {
			return errors.Newf(errors.ErrCodeEntryNotDerived, "source line %d is %q, want %q", i, l.Source, src.Code)
		}
		if !l.Amount.Equal(Convert(l.Raw, l.Rate)) {
			return notDerived(e, "%s amount", src.Code)
		}
		if !l.Commission.Equal(Commission(l.Amount, e.ServiceFee)) {
			return notDerived(e, "%s commission", src.Code)
		}
		commissions = append(commissions, l.Commission)
	}

	want := Totals(commissions, e.GSTRate)
	if !want.TotalCommission.Equal(e.TotalCommission) || !want.GST.Equal(e.GST) || !want.TotalInvoice.Equal(e.TotalInvoice) {
		return notDerived(e, "invoice totals")
	}
	o := e.Outstanding
	if !o.Total.Equal(Combine(o.Previous, o.Current, o.Operator)) {
		return notDerived(e, "total outstanding")
	}
	return nil
}

func notDerived(e *Entry, format string, args ...interface{}) error {
	return errors.New(errors.ErrCodeEntryNotDerived, "billing entry is not fully derived").
		WithDetail(fmt.Sprintf(format, args...) + " mismatch for " + e.Key().String())
}

// InvoiceNumberFor renders the default invoice number "INV/2025-26/APR/C001".
func InvoiceNumberFor(k Key) string {
	return fmt.Sprintf("INV/%s/%s/%s", k.FinancialYear().Short(), strings.ToUpper(string(k.Month)), k.ClientID)
}

//Personal.AI order the ending
