package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

var one = decimal.NewFromInt(1)

// DefaultGSTRate is the tax ratio applied when settings carry none.
var DefaultGSTRate = decimal.RequireFromString("0.18")

// DefaultServiceFee is the fee ratio assigned to new clients.
var DefaultServiceFee = decimal.RequireFromString("0.10")

// Convert turns a foreign amount into local currency at full precision.
// A zero amount or a zero rate yields zero.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	if amount.IsZero() || rate.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(rate)
}

// Commission applies the service fee ratio to a converted amount.
func Commission(converted, fee decimal.Decimal) decimal.Decimal {
	if converted.IsZero() || fee.IsZero() {
		return decimal.Zero
	}
	return converted.Mul(fee)
}

// ValidateFee checks that fee lies in [0, 1].
func ValidateFee(fee decimal.Decimal) error {
	if fee.IsNegative() || fee.GreaterThan(one) {
		return errors.Newf(errors.ErrCodeFeeOutOfRange, "service fee %s outside [0,1]", fee.String())
	}
	return nil
}

// ValidateRate checks that a tax ratio lies in [0, 1].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(one) {
		return errors.Newf(errors.ErrCodeSettingsInvalid, "tax rate %s outside [0,1]", rate.String())
	}
	return nil
}

// Totals sums commissions, derives GST and the grand total.
func Totals(commissions []decimal.Decimal, gstRate decimal.Decimal) InvoiceTotals {
	total := decimal.Zero
	for _, c := range commissions {
		total = total.Add(c)
	}
	gst := decimal.Zero
	if !total.IsZero() && !gstRate.IsZero() {
		gst = total.Mul(gstRate)
	}
	return InvoiceTotals{
		TotalCommission: total,
		GST:             gst,
		TotalInvoice:    total.Add(gst),
	}
}

// DeriveInput carries everything needed to build an entry: raw amounts per
// source in each source's own currency, the client snapshot, rates and the
// outstanding movement.
type DeriveInput struct {
	Key        Key
	ClientName string
	ServiceFee decimal.Decimal

	Raw     map[SourceCode]decimal.Decimal
	Rates   Rates
	GSTRate decimal.Decimal

	PreviousOutstanding decimal.Decimal
	CurrentOutstanding  decimal.Decimal
	Operator            Operator

	IPRSRemarks string
	PRSRemarks  string

	InvoiceDate   time.Time
	InvoiceNumber string
	InvoiceStatus InvoiceStatus
	Status        Status
}

// Derive runs the converter, commission and totals stages and combines the
// outstanding balance. It is pure: the returned entry has no ID or timestamps.
func Derive(in DeriveInput) (*Entry, error) {
	if err := in.Key.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateFee(in.ServiceFee); err != nil {
		return nil, err
	}
	if err := ValidateRate(in.GSTRate); err != nil {
		return nil, err
	}

	op := in.Operator
	if op == "" {
		op = OperatorAdd
	}
	if !op.Valid() {
		return nil, errors.Newf(errors.ErrCodeInvalidOperator, "unknown outstanding operator %q", op)
	}
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	invoiceStatus := in.InvoiceStatus
	if invoiceStatus == "" {
		invoiceStatus = InvoiceDraft
	}
	if !status.Valid() || !invoiceStatus.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidStatus, "unrecognised status")
	}

	lines := make([]SourceLine, 0, len(Sources))
	commissions := make([]decimal.Decimal, 0, len(Sources))
	for _, src := range Sources {
		raw := in.Raw[src.Code]
		rate := in.Rates.For(src.Currency)
		if raw.IsNegative() {
			return nil, errors.Newf(errors.ErrCodeInvalidAmount, "%s amount must not be negative", src.Name)
		}
		if rate.IsNegative() {
			return nil, errors.Newf(errors.ErrCodeInvalidAmount, "%s exchange rate must not be negative", src.Currency)
		}
		amount := Convert(raw, rate)
		comm := Commission(amount, in.ServiceFee)
		lines = append(lines, SourceLine{
			Source:     src.Code,
			Currency:   src.Currency,
			Raw:        raw,
			Rate:       rate,
			Amount:     amount,
			Commission: comm,
		})
		commissions = append(commissions, comm)
	}

	fy := in.Key.FinancialYear()
	return &Entry{
		ClientID:      in.Key.ClientID,
		ClientName:    strings.TrimSpace(in.ClientName),
		Month:         in.Key.Month,
		MonthLabel:    in.Key.Month.Label(fy),
		FinancialYear: fy,
		ServiceFee:    in.ServiceFee,
		Lines:         lines,
		InvoiceTotals: Totals(commissions, in.GSTRate),
		GSTRate:       in.GSTRate,
		Outstanding:   NewOutstanding(in.PreviousOutstanding, in.CurrentOutstanding, op),
		IPRSRemarks:   in.IPRSRemarks,
		PRSRemarks:    in.PRSRemarks,
		InvoiceDate:   in.InvoiceDate,
		InvoiceNumber: in.InvoiceNumber,
		InvoiceStatus: invoiceStatus,
		Status:        status,
	}, nil
}

// ParseAmount reads a user-entered amount. Blank or unparsable text is zero;
// thousands separators and a leading currency symbol are ignored.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "₹£$ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

//Personal.AI order the ending
