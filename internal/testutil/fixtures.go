package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
)

// D parses a decimal literal and panics on bad input.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// NewClient returns an active client with the given fee.
func NewClient(id, name, fee string) *client.Client {
	return &client.Client{
		ClientID: id,
		Name:     name,
		Category: client.CategoryComposer,
		Fee:      D(fee),
		IsActive: true,
	}
}

// EntryOption tweaks the input of NewEntry.
type EntryOption func(*billing.DeriveInput)

// WithRaw sets the raw amount of one source.
func WithRaw(code billing.SourceCode, amount string) EntryOption {
	return func(in *billing.DeriveInput) { in.Raw[code] = D(amount) }
}

// WithOutstanding sets the outstanding movement.
func WithOutstanding(previous, current string, op billing.Operator) EntryOption {
	return func(in *billing.DeriveInput) {
		in.PreviousOutstanding = D(previous)
		in.CurrentOutstanding = D(current)
		in.Operator = op
	}
}

// WithStatus sets the coarse and fine status.
func WithStatus(st billing.Status, inv billing.InvoiceStatus) EntryOption {
	return func(in *billing.DeriveInput) {
		in.Status = st
		in.InvoiceStatus = inv
	}
}

// NewEntry derives an entry at fee 0.10 with default settings rates.
func NewEntry(t testing.TB, clientID, name string, month billing.Month, fyStart int, opts ...EntryOption) *billing.Entry {
	t.Helper()
	s := settings.Defaults()
	in := billing.DeriveInput{
		Key:        billing.Key{ClientID: clientID, Month: month, FYStart: fyStart},
		ClientName: name,
		ServiceFee: billing.DefaultServiceFee,
		Raw:        map[billing.SourceCode]decimal.Decimal{},
		Rates:      s.Rates(),
		GSTRate:    s.GSTRate,
	}
	for _, opt := range opts {
		opt(&in)
	}
	e, err := billing.Derive(in)
	require.NoError(t, err)
	return e
}

//Personal.AI order the ending
