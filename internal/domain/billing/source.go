package billing

import (
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
)

// LocalCurrency is the currency every source is converted into.
const LocalCurrency = CurrencyINR

// SourceCode identifies a royalty income channel.
type SourceCode string

const (
	SourceIPRS    SourceCode = "iprs"
	SourcePRS     SourceCode = "prs"
	SourceSoundEx SourceCode = "soundex"
	SourceISAMRA  SourceCode = "isamra"
	SourceASCAP   SourceCode = "ascap"
	SourcePPL     SourceCode = "ppl"
)

// Source describes one royalty collection body.
type Source struct {
	Code     SourceCode `json:"code"`
	Name     string     `json:"name"`
	Currency Currency   `json:"currency"`
}

// Foreign reports whether amounts from s need conversion.
func (s Source) Foreign() bool {
	return s.Currency != LocalCurrency
}

// Sources is the fixed, ordered set of income channels. Every stage of the
// calculation pipeline iterates this table; a new channel is a new row.
var Sources = []Source{
	{Code: SourceIPRS, Name: "IPRS", Currency: CurrencyINR},
	{Code: SourcePRS, Name: "PRS", Currency: CurrencyGBP},
	{Code: SourceSoundEx, Name: "Sound Ex", Currency: CurrencyUSD},
	{Code: SourceISAMRA, Name: "ISAMRA", Currency: CurrencyINR},
	{Code: SourceASCAP, Name: "ASCAP", Currency: CurrencyUSD},
	{Code: SourcePPL, Name: "PPL", Currency: CurrencyINR},
}

// LookupSource returns the Source for code.
func LookupSource(code SourceCode) (Source, bool) {
	for _, s := range Sources {
		if s.Code == code {
			return s, true
		}
	}
	return Source{}, false
}

// Rates holds exchange rates expressed as local currency per one foreign unit.
type Rates map[Currency]decimal.Decimal

// For returns the rate for c. The local currency always converts at 1; an
// unknown currency yields zero.
func (r Rates) For(c Currency) decimal.Decimal {
	if c == LocalCurrency {
		return decimal.NewFromInt(1)
	}
	if rate, ok := r[c]; ok {
		return rate
	}
	return decimal.Zero
}

//Personal.AI order the ending
