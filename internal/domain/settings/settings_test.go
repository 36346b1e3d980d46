package settings

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Validate())
	assert.Equal(t, 2025, s.FinancialYear.StartYear)
	assert.Equal(t, 2026, s.FinancialYear.EndYear)
	assert.True(t, s.GBPToINRRate.Equal(decimal.RequireFromString("110.5")))
	assert.True(t, s.USDToINRRate.Equal(decimal.NewFromInt(83)))
	assert.True(t, s.GSTRate.Equal(decimal.RequireFromString("0.18")))
}

func TestSettings_Rates(t *testing.T) {
	r := Defaults().Rates()
	assert.True(t, r.For(billing.CurrencyGBP).Equal(decimal.RequireFromString("110.50")))
	assert.True(t, r.For(billing.CurrencyINR).Equal(decimal.NewFromInt(1)))
}

func TestSettings_Validate(t *testing.T) {
	s := Defaults()
	s.GSTRate = decimal.RequireFromString("1.5")
	assert.True(t, errors.IsValidation(s.Validate()))

	s = Defaults()
	s.USDToINRRate = decimal.NewFromInt(-1)
	assert.True(t, errors.IsCode(s.Validate(), errors.ErrCodeSettingsInvalid))

	s = Defaults()
	s.FinancialYear.EndYear = 2030
	assert.True(t, errors.IsCode(s.Validate(), errors.ErrCodeSettingsInvalid))
}

func TestStatic_ReturnsCopy(t *testing.T) {
	p := NewStatic(nil)
	a, err := p.Current(context.Background())
	require.NoError(t, err)
	a.GSTRate = decimal.Zero

	b, err := p.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, b.GSTRate.Equal(decimal.RequireFromString("0.18")))
}

func TestStatic_Update(t *testing.T) {
	p := NewStatic(nil)
	ctx := context.Background()

	next := Defaults()
	next.GBPToINRRate = decimal.RequireFromString("112")
	require.NoError(t, p.Update(ctx, next))
	next.GBPToINRRate = decimal.Zero

	got, err := p.Current(ctx)
	require.NoError(t, err)
	assert.True(t, got.GBPToINRRate.Equal(decimal.NewFromInt(112)))

	bad := Defaults()
	bad.FinancialYear.EndYear = 2030
	assert.True(t, errors.IsCode(p.Update(ctx, bad), errors.ErrCodeSettingsInvalid))
	assert.Error(t, p.Update(ctx, nil))
}

//Personal.AI order the ending
