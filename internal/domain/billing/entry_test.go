package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

func derivedEntry(t *testing.T) *Entry {
	t.Helper()
	e, err := Derive(DeriveInput{
		Key:        Key{ClientID: "C001", Month: MonthApr, FYStart: 2025},
		ClientName: "Asha Rao",
		ServiceFee: d("0.10"),
		Raw: map[SourceCode]decimal.Decimal{
			SourceIPRS: d("1000"),
			SourcePRS:  d("100"),
		},
		Rates:   testRates(),
		GSTRate: d("0.18"),
	})
	require.NoError(t, err)
	return e
}

func TestNewKey(t *testing.T) {
	k, err := NewKey(" C001 ", "APR", 2025)
	require.NoError(t, err)
	assert.Equal(t, Key{ClientID: "C001", Month: MonthApr, FYStart: 2025}, k)
	assert.Equal(t, "C001_apr_2025", k.String())

	_, err = NewKey("", "apr", 2025)
	assert.True(t, errors.IsValidation(err))

	_, err = NewKey("C001", "april", 2025)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidMonth))

	_, err = NewKey("C001", "apr", 0)
	assert.True(t, errors.IsValidation(err))
}

func TestKey_Previous(t *testing.T) {
	k := Key{ClientID: "C001", Month: MonthApr, FYStart: 2025}
	assert.Equal(t, Key{ClientID: "C001", Month: MonthMar, FYStart: 2024}, k.Previous())

	k = Key{ClientID: "C001", Month: MonthJan, FYStart: 2025}
	assert.Equal(t, Key{ClientID: "C001", Month: MonthDec, FYStart: 2025}, k.Previous())
}

func TestEntry_CheckDerived_Accepts(t *testing.T) {
	assert.NoError(t, derivedEntry(t).CheckDerived())
}

func TestEntry_CheckDerived_RejectsTampering(t *testing.T) {
	cases := map[string]func(e *Entry){
		"total commission": func(e *Entry) { e.TotalCommission = d("1") },
		"gst":              func(e *Entry) { e.GST = d("0") },
		"invoice":          func(e *Entry) { e.TotalInvoice = d("1417") },
		"amount":           func(e *Entry) { e.Lines[1].Amount = d("10000") },
		"commission":       func(e *Entry) { e.Lines[0].Commission = d("99") },
		"outstanding":      func(e *Entry) { e.Outstanding.Total = d("5") },
		"missing line":     func(e *Entry) { e.Lines = e.Lines[:5] },
		"line order": func(e *Entry) {
			e.Lines[0], e.Lines[1] = e.Lines[1], e.Lines[0]
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := derivedEntry(t)
			mutate(e)
			err := e.CheckDerived()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeEntryNotDerived))
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestEntry_CheckDerived_RejectsBadLabels(t *testing.T) {
	e := derivedEntry(t)
	e.Status = Status("paid")
	assert.True(t, errors.IsCode(e.CheckDerived(), errors.ErrCodeInvalidStatus))

	e = derivedEntry(t)
	e.ServiceFee = d("2")
	assert.True(t, errors.IsCode(e.CheckDerived(), errors.ErrCodeFeeOutOfRange))

	var nilEntry *Entry
	assert.Error(t, nilEntry.CheckDerived())
}

func TestEntry_Clone(t *testing.T) {
	e := derivedEntry(t)
	c := e.Clone()
	c.Lines[0].Raw = d("1")
	c.ClientName = "Other"
	assert.True(t, e.Lines[0].Raw.Equal(d("1000")))
	assert.Equal(t, "Asha Rao", e.ClientName)
}

func TestEntry_LineMissing(t *testing.T) {
	e := &Entry{}
	l := e.Line(SourcePPL)
	assert.Equal(t, SourcePPL, l.Source)
	assert.True(t, l.Amount.IsZero())
}

func TestInvoiceNumberFor(t *testing.T) {
	assert.Equal(t, "INV/2025-26/APR/C001", InvoiceNumberFor(Key{ClientID: "C001", Month: MonthApr, FYStart: 2025}))
	assert.Equal(t, "INV/2099-00/MAR/X", InvoiceNumberFor(Key{ClientID: "X", Month: MonthMar, FYStart: 2099}))
}

func TestOutstanding(t *testing.T) {
	o := NewOutstanding(d("500"), d("200"), OperatorAdd)
	assertDecimal(t, "700", o.Total)

	o = NewOutstanding(d("500"), d("200"), OperatorSubtract)
	assertDecimal(t, "300", o.Total)

	o = NewOutstanding(d("100"), d("250"), OperatorSubtract)
	assertDecimal(t, "-150", o.Total)

	o = NewOutstanding(d("1"), d("2"), "")
	assert.Equal(t, OperatorAdd, o.Operator)
}

func TestParseOperator(t *testing.T) {
	for _, s := range []string{"", "+", "add", " Plus "} {
		op, err := ParseOperator(s)
		require.NoError(t, err, s)
		assert.Equal(t, OperatorAdd, op)
	}
	for _, s := range []string{"-", "subtract", "MINUS"} {
		op, err := ParseOperator(s)
		require.NoError(t, err, s)
		assert.Equal(t, OperatorSubtract, op)
	}
	_, err := ParseOperator("*")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidOperator))
}

//Personal.AI order the ending
