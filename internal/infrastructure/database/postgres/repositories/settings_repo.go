package repositories

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Keys of the settings table.
const (
	settingFYStart = "financial_year_start"
	settingGBPRate = "gbp_to_inr_rate"
	settingUSDRate = "usd_to_inr_rate"
	settingGSTRate = "gst_rate"
)

// SettingsRepo stores the global parameters as key/value rows.
type SettingsRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewSettingsRepo(conn *postgres.Connection, log logging.Logger) *SettingsRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SettingsRepo{conn: conn, log: log, executor: conn.DB()}
}

var _ settings.Store = (*SettingsRepo)(nil)

// Current reads the stored rows over the defaults. Missing keys keep their
// default; a malformed value is an error.
func (r *SettingsRepo) Current(ctx context.Context) (*settings.Settings, error) {
	rows, err := r.executor.QueryContext(ctx, `SELECT key, value, updated_at FROM settings`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load settings")
	}
	defer rows.Close()

	s := settings.Defaults()
	for rows.Next() {
		var (
			key, value string
			updatedAt  time.Time
		)
		if err := rows.Scan(&key, &value, &updatedAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan setting")
		}
		if err := applySetting(s, key, value); err != nil {
			return nil, err
		}
		if updatedAt.After(s.UpdatedAt) {
			s.UpdatedAt = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate settings")
	}
	return s, nil
}

// Update validates s and writes all keys in one transaction.
func (r *SettingsRepo) Update(ctx context.Context, s *settings.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}

	values := [][2]string{
		{settingFYStart, strconv.Itoa(s.FinancialYear.StartYear)},
		{settingGBPRate, s.GBPToINRRate.String()},
		{settingUSDRate, s.USDToINRRate.String()},
		{settingGSTRate, s.GSTRate.String()},
	}
	for _, kv := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			kv[0], kv[1])
		if err != nil {
			tx.Rollback()
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update settings")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}

	r.log.Info("settings updated",
		logging.FYStart(s.FinancialYear.StartYear),
		logging.Decimal("gbp_rate", s.GBPToINRRate),
		logging.Decimal("usd_rate", s.USDToINRRate),
		logging.Decimal("gst_rate", s.GSTRate),
	)
	return nil
}

func applySetting(s *settings.Settings, key, value string) error {
	switch key {
	case settingFYStart:
		year, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSettingsInvalid, "invalid financial year start").WithDetail(value)
		}
		s.FinancialYear = billing.NewFinancialYear(year)
	case settingGBPRate, settingUSDRate, settingGSTRate:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSettingsInvalid, "invalid setting "+key).WithDetail(value)
		}
		switch key {
		case settingGBPRate:
			s.GBPToINRRate = d
		case settingUSDRate:
			s.USDToINRRate = d
		default:
			s.GSTRate = d
		}
	}
	return nil
}

//Personal.AI order the ending
