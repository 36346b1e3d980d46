package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

func testEntry(t *testing.T, clientID string, month billing.Month) *billing.Entry {
	t.Helper()
	e, err := billing.Derive(billing.DeriveInput{
		Key:        billing.Key{ClientID: clientID, Month: month, FYStart: 2025},
		ClientName: "Asha Rao",
		ServiceFee: decimal.RequireFromString("0.10"),
		Raw: map[billing.SourceCode]decimal.Decimal{
			billing.SourceIPRS: decimal.RequireFromString("1000"),
			billing.SourcePRS:  decimal.RequireFromString("100"),
		},
		Rates:              billing.Rates{billing.CurrencyGBP: decimal.RequireFromString("110"), billing.CurrencyUSD: decimal.RequireFromString("83")},
		GSTRate:            decimal.RequireFromString("0.18"),
		CurrentOutstanding: decimal.RequireFromString("500"),
	})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	return e
}

// entryRowValues renders e as the driver values a SELECT would return.
func entryRowValues(e *billing.Entry) []driver.Value {
	args := entryArgs(e)
	vals := make([]driver.Value, 0, len(args)+2)
	for _, a := range args {
		if v, ok := a.(driver.Valuer); ok {
			a, _ = v.Value()
		}
		vals = append(vals, a)
	}
	return append(vals, e.CreatedAt, e.UpdatedAt)
}

type EntryRepoTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	db   *sql.DB
	repo *EntryRepo
}

func (s *EntryRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)

	logger := logging.NewNopLogger()
	s.repo = NewEntryRepo(postgres.NewConnectionWithDB(s.db, logger), logger)
}

func (s *EntryRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *EntryRepoTestSuite) TestSave_Insert() {
	e := testEntry(s.T(), "C001", billing.MonthApr)
	now := time.Now()

	s.mock.ExpectQuery("INSERT INTO billing_entries .* ON CONFLICT \\(client_id, month, fy_start\\) DO UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("stored-id", now, now))

	saved, err := s.repo.Save(context.Background(), e)
	s.Require().NoError(err)
	s.Equal("stored-id", saved.ID)
	s.Equal(now, saved.CreatedAt)
	s.Empty(e.ID, "input entry must not be mutated")
	s.True(saved.TotalInvoice.Equal(e.TotalInvoice))
}

func (s *EntryRepoTestSuite) TestSave_RejectsUnderivedEntry() {
	e := testEntry(s.T(), "C001", billing.MonthApr)
	e.TotalInvoice = decimal.RequireFromString("1")

	_, err := s.repo.Save(context.Background(), e)
	s.True(errors.IsCode(err, errors.ErrCodeEntryNotDerived))
}

func (s *EntryRepoTestSuite) TestSave_UniqueViolation() {
	e := testEntry(s.T(), "C001", billing.MonthApr)
	s.mock.ExpectQuery("INSERT INTO billing_entries").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	_, err := s.repo.Save(context.Background(), e)
	s.True(errors.IsCode(err, errors.ErrCodeEntryWriteConflict))
	s.True(errors.IsConflict(err))
}

func (s *EntryRepoTestSuite) TestSave_DatabaseError() {
	e := testEntry(s.T(), "C001", billing.MonthApr)
	s.mock.ExpectQuery("INSERT INTO billing_entries").WillReturnError(sql.ErrConnDone)

	_, err := s.repo.Save(context.Background(), e)
	s.True(errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func (s *EntryRepoTestSuite) TestGet_Found() {
	e := testEntry(s.T(), "C001", billing.MonthJan)
	e.ID = "id-1"
	e.InvoiceDate = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery("SELECT .* FROM billing_entries WHERE client_id = \\$1 AND month = \\$2 AND fy_start = \\$3").
		WithArgs("C001", "jan", 2025).
		WillReturnRows(sqlmock.NewRows(entrySelectColumns).AddRow(entryRowValues(e)...))

	got, err := s.repo.Get(context.Background(), e.Key())
	s.Require().NoError(err)
	s.Equal("id-1", got.ID)
	s.Equal("January 2026", got.MonthLabel)
	s.Equal(e.InvoiceDate, got.InvoiceDate)
	s.True(got.Line(billing.SourcePRS).Amount.Equal(decimal.RequireFromString("11000")))
	s.NoError(got.CheckDerived())
}

func (s *EntryRepoTestSuite) TestGet_NotFound() {
	key := billing.Key{ClientID: "C404", Month: billing.MonthMay, FYStart: 2025}
	s.mock.ExpectQuery("SELECT .* FROM billing_entries").
		WillReturnRows(sqlmock.NewRows(entrySelectColumns))

	_, err := s.repo.Get(context.Background(), key)
	s.True(errors.IsCode(err, errors.ErrCodeEntryNotFound))
	s.True(errors.IsNotFound(err))
}

func (s *EntryRepoTestSuite) TestDelete() {
	key := billing.Key{ClientID: "C001", Month: billing.MonthApr, FYStart: 2025}
	s.mock.ExpectExec("DELETE FROM billing_entries").
		WithArgs("C001", "apr", 2025).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(s.repo.Delete(context.Background(), key))

	s.mock.ExpectExec("DELETE FROM billing_entries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.True(errors.IsNotFound(s.repo.Delete(context.Background(), key)))
}

func (s *EntryRepoTestSuite) TestListByMonth() {
	a := testEntry(s.T(), "C001", billing.MonthApr)
	b := testEntry(s.T(), "C002", billing.MonthApr)

	s.mock.ExpectQuery("SELECT .* WHERE month = \\$1 AND fy_start = \\$2 ORDER BY LOWER\\(client_name\\)").
		WithArgs("apr", 2025).
		WillReturnRows(sqlmock.NewRows(entrySelectColumns).
			AddRow(entryRowValues(a)...).
			AddRow(entryRowValues(b)...))

	got, err := s.repo.ListByMonth(context.Background(), billing.MonthApr, 2025)
	s.Require().NoError(err)
	s.Len(got, 2)
	s.Equal("C002", got[1].ClientID)
}

func (s *EntryRepoTestSuite) TestListByClient_OrdersByFinancialYearMonth() {
	s.mock.ExpectQuery("SELECT .* WHERE client_id = \\$1 ORDER BY fy_start, array_position").
		WithArgs("C001").
		WillReturnRows(sqlmock.NewRows(entrySelectColumns))

	got, err := s.repo.ListByClient(context.Background(), "C001")
	s.NoError(err)
	s.Empty(got)
}

func (s *EntryRepoTestSuite) TestList_BuildsFilter() {
	s.mock.ExpectQuery("WHERE month = \\$1 AND status = \\$2 AND fy_start = \\$3 ORDER BY").
		WithArgs("feb", "submitted", 2025).
		WillReturnRows(sqlmock.NewRows(entrySelectColumns))

	_, err := s.repo.List(context.Background(), billing.EntryFilter{
		Month:   billing.MonthFeb,
		Status:  billing.StatusSubmitted,
		FYStart: 2025,
	})
	s.NoError(err)
}

func (s *EntryRepoTestSuite) TestList_QueryError() {
	s.mock.ExpectQuery("SELECT .* FROM billing_entries ORDER BY").WillReturnError(sql.ErrConnDone)

	_, err := s.repo.List(context.Background(), billing.EntryFilter{})
	s.True(errors.IsCode(err, errors.ErrCodeDatabaseError))
}

func (s *EntryRepoTestSuite) TestUpdateStatus() {
	e := testEntry(s.T(), "C001", billing.MonthApr)
	e.Status = billing.StatusSubmitted
	sent := billing.InvoiceBillSent
	e.InvoiceStatus = sent

	s.mock.ExpectQuery("UPDATE billing_entries SET").
		WithArgs("C001", "apr", 2025, nil, "bill_sent").
		WillReturnRows(sqlmock.NewRows(entrySelectColumns).AddRow(entryRowValues(e)...))

	got, err := s.repo.UpdateStatus(context.Background(), e.Key(), billing.StatusUpdate{InvoiceStatus: &sent})
	s.Require().NoError(err)
	s.Equal(billing.InvoiceBillSent, got.InvoiceStatus)
	s.Equal(billing.StatusSubmitted, got.Status)
}

func (s *EntryRepoTestSuite) TestUpdateStatus_NotFound() {
	st := billing.StatusSubmitted
	s.mock.ExpectQuery("UPDATE billing_entries SET").
		WillReturnRows(sqlmock.NewRows(entrySelectColumns))

	_, err := s.repo.UpdateStatus(context.Background(),
		billing.Key{ClientID: "C404", Month: billing.MonthApr, FYStart: 2025},
		billing.StatusUpdate{Status: &st})
	s.True(errors.IsCode(err, errors.ErrCodeEntryNotFound))
}

func TestEntryRepoTestSuite(t *testing.T) {
	suite.Run(t, new(EntryRepoTestSuite))
}

//Personal.AI order the ending
