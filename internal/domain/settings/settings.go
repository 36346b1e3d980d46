// Package settings holds the global billing parameters: the active financial
// year, exchange rates and the GST rate.
package settings

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Settings is the single global parameter set.
type Settings struct {
	FinancialYear billing.FinancialYear `json:"financial_year"`
	GBPToINRRate  decimal.Decimal       `json:"gbp_to_inr_rate"`
	USDToINRRate  decimal.Decimal       `json:"usd_to_inr_rate"`
	GSTRate       decimal.Decimal       `json:"gst_rate"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Defaults returns FY 2025-2026, GBP 110.50, USD 83.00 and GST 18%.
func Defaults() *Settings {
	return &Settings{
		FinancialYear: billing.NewFinancialYear(2025),
		GBPToINRRate:  decimal.RequireFromString("110.50"),
		USDToINRRate:  decimal.RequireFromString("83.00"),
		GSTRate:       billing.DefaultGSTRate,
	}
}

// Rates returns the exchange rates in the shape the calculator expects.
func (s *Settings) Rates() billing.Rates {
	return billing.Rates{
		billing.CurrencyGBP: s.GBPToINRRate,
		billing.CurrencyUSD: s.USDToINRRate,
	}
}

// Validate checks rate signs, the GST range and the financial year.
func (s *Settings) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeSettingsInvalid, "settings are nil")
	}
	if err := s.FinancialYear.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSettingsInvalid, "invalid financial year")
	}
	if s.GBPToINRRate.IsNegative() || s.USDToINRRate.IsNegative() {
		return errors.New(errors.ErrCodeSettingsInvalid, "exchange rates must not be negative")
	}
	if err := billing.ValidateRate(s.GSTRate); err != nil {
		return err
	}
	return nil
}

// Provider supplies the current settings.
type Provider interface {
	Current(ctx context.Context) (*Settings, error)
}

// Store is a Provider that can also persist settings.
type Store interface {
	Provider
	Update(ctx context.Context, s *Settings) error
}

// Static holds settings in memory. Update swaps them, which is how config
// hot reload reaches running services.
type Static struct {
	mu sync.RWMutex
	s  *Settings
}

var _ Store = (*Static)(nil)

// NewStatic wraps s; nil means Defaults.
func NewStatic(s *Settings) *Static {
	if s == nil {
		s = Defaults()
	}
	return &Static{s: s}
}

// Current returns a copy of the wrapped settings.
func (p *Static) Current(ctx context.Context) (*Settings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c := *p.s
	return &c, nil
}

// Update validates s and replaces the held settings with a copy of it.
func (p *Static) Update(ctx context.Context, s *Settings) error {
	if s == nil {
		return errors.NewValidationError("settings are required")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	c := *s
	p.mu.Lock()
	p.s = &c
	p.mu.Unlock()
	return nil
}

//Personal.AI order the ending
