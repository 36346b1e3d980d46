package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// monthOrderSQL sorts the month column in financial-year order.
const monthOrderSQL = "array_position(ARRAY['apr','may','jun','jul','aug','sep','oct','nov','dec','jan','feb','mar']::text[], month)"

var (
	// entryWriteColumns is every column Save writes, in argument order.
	entryWriteColumns = buildEntryWriteColumns()
	// entrySelectColumns adds the server-maintained timestamps.
	entrySelectColumns = append(append([]string(nil), entryWriteColumns...), "created_at", "updated_at")

	entrySelectList = strings.Join(entrySelectColumns, ", ")
	entryUpsertSQL  = buildEntryUpsert()
)

func buildEntryWriteColumns() []string {
	cols := []string{"id", "client_id", "client_name", "month", "fy_start", "fy_end", "service_fee"}
	for _, src := range billing.Sources {
		code := string(src.Code)
		cols = append(cols, code+"_raw", code+"_rate", code+"_amount", code+"_commission")
	}
	return append(cols,
		"total_commission", "gst_rate", "gst", "total_invoice",
		"previous_outstanding", "current_outstanding", "outstanding_operator", "total_outstanding",
		"iprs_remarks", "prs_remarks",
		"invoice_date", "invoice_number", "invoice_status", "status",
	)
}

func buildEntryUpsert() string {
	placeholders := make([]string, len(entryWriteColumns))
	updates := make([]string, 0, len(entryWriteColumns))
	for i, col := range entryWriteColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		switch col {
		case "id", "client_id", "month", "fy_start":
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	updates = append(updates, "updated_at = NOW()")
	return fmt.Sprintf(`INSERT INTO billing_entries (%s) VALUES (%s)
ON CONFLICT (client_id, month, fy_start) DO UPDATE SET %s
RETURNING id, created_at, updated_at`,
		strings.Join(entryWriteColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

// EntryRepo is the PostgreSQL billing.EntryRepository.
type EntryRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewEntryRepo builds an EntryRepo on conn.
func NewEntryRepo(conn *postgres.Connection, log logging.Logger) *EntryRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EntryRepo{conn: conn, log: log, executor: conn.DB()}
}

var _ billing.EntryRepository = (*EntryRepo)(nil)

// Save upserts e on its natural key. The stored id and created_at survive a
// replace; every other column is overwritten.
func (r *EntryRepo) Save(ctx context.Context, e *billing.Entry) (*billing.Entry, error) {
	if err := e.CheckDerived(); err != nil {
		return nil, err
	}
	saved := e.Clone()
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}

	var createdAt, updatedAt time.Time
	err := r.executor.QueryRowContext(ctx, entryUpsertSQL, entryArgs(saved)...).
		Scan(&saved.ID, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.Wrap(err, errors.ErrCodeEntryWriteConflict, "billing entry write conflict").
				WithDetail(saved.Key().String())
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save billing entry")
	}
	saved.CreatedAt = createdAt
	saved.UpdatedAt = updatedAt

	r.log.Debug("billing entry saved", logging.EntryKey(saved.Key()), logging.String("id", saved.ID))
	return saved, nil
}

// Get loads the entry for key.
func (r *EntryRepo) Get(ctx context.Context, key billing.Key) (*billing.Entry, error) {
	query := `SELECT ` + entrySelectList + ` FROM billing_entries WHERE client_id = $1 AND month = $2 AND fy_start = $3`
	row := r.executor.QueryRowContext(ctx, query, key.ClientID, string(key.Month), key.FYStart)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entryNotFound(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get billing entry")
	}
	return e, nil
}

// Delete removes the entry for key.
func (r *EntryRepo) Delete(ctx context.Context, key billing.Key) error {
	res, err := r.executor.ExecContext(ctx,
		`DELETE FROM billing_entries WHERE client_id = $1 AND month = $2 AND fy_start = $3`,
		key.ClientID, string(key.Month), key.FYStart)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete billing entry")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete billing entry")
	}
	if n == 0 {
		return entryNotFound(key)
	}
	return nil
}

// ListByMonth returns the month's entries ordered by client name.
func (r *EntryRepo) ListByMonth(ctx context.Context, month billing.Month, fyStart int) ([]*billing.Entry, error) {
	query := `SELECT ` + entrySelectList + ` FROM billing_entries WHERE month = $1 AND fy_start = $2 ORDER BY LOWER(client_name), client_id`
	return r.query(ctx, query, string(month), fyStart)
}

// ListByClient returns a client's entries in chronological order.
func (r *EntryRepo) ListByClient(ctx context.Context, clientID string) ([]*billing.Entry, error) {
	query := `SELECT ` + entrySelectList + ` FROM billing_entries WHERE client_id = $1 ORDER BY fy_start, ` + monthOrderSQL
	return r.query(ctx, query, clientID)
}

// List applies filter and orders by client name then month.
func (r *EntryRepo) List(ctx context.Context, filter billing.EntryFilter) ([]*billing.Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Month != "" {
		add("month = $%d", string(filter.Month))
	}
	if filter.ClientID != "" {
		add("client_id = $%d", filter.ClientID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.FYStart != 0 {
		add("fy_start = $%d", filter.FYStart)
	}

	query := `SELECT ` + entrySelectList + ` FROM billing_entries`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY LOWER(client_name), fy_start, ` + monthOrderSQL + `, client_id`
	return r.query(ctx, query, args...)
}

// UpdateStatus changes only the status labels of an existing entry.
func (r *EntryRepo) UpdateStatus(ctx context.Context, key billing.Key, u billing.StatusUpdate) (*billing.Entry, error) {
	var status, invoiceStatus interface{}
	if u.Status != nil {
		status = string(*u.Status)
	}
	if u.InvoiceStatus != nil {
		invoiceStatus = string(*u.InvoiceStatus)
	}
	query := `UPDATE billing_entries SET
	status = COALESCE($4, status),
	invoice_status = COALESCE($5, invoice_status),
	updated_at = NOW()
WHERE client_id = $1 AND month = $2 AND fy_start = $3
RETURNING ` + entrySelectList
	row := r.executor.QueryRowContext(ctx, query, key.ClientID, string(key.Month), key.FYStart, status, invoiceStatus)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entryNotFound(key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update billing entry status")
	}
	return e, nil
}

func (r *EntryRepo) query(ctx context.Context, query string, args ...interface{}) ([]*billing.Entry, error) {
	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list billing entries")
	}
	defer rows.Close()

	var out []*billing.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan billing entry")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate billing entries")
	}
	return out, nil
}

func entryNotFound(key billing.Key) error {
	return errors.New(errors.ErrCodeEntryNotFound, "billing entry not found").WithDetail(key.String())
}

func entryArgs(e *billing.Entry) []interface{} {
	args := []interface{}{
		e.ID, e.ClientID, e.ClientName, string(e.Month), e.FinancialYear.StartYear, e.FinancialYear.EndYear, e.ServiceFee,
	}
	for _, src := range billing.Sources {
		l := e.Line(src.Code)
		args = append(args, l.Raw, l.Rate, l.Amount, l.Commission)
	}
	return append(args,
		e.TotalCommission, e.GSTRate, e.GST, e.TotalInvoice,
		e.Outstanding.Previous, e.Outstanding.Current, string(e.Outstanding.Operator), e.Outstanding.Total,
		e.IPRSRemarks, e.PRSRemarks,
		nullTime(e.InvoiceDate), e.InvoiceNumber, string(e.InvoiceStatus), string(e.Status),
	)
}

func scanEntry(sc scanner) (*billing.Entry, error) {
	var (
		e             billing.Entry
		month         string
		operator      string
		invoiceStatus string
		status        string
		invoiceDate   sql.NullTime
	)
	lines := make([]billing.SourceLine, len(billing.Sources))

	dest := []interface{}{
		&e.ID, &e.ClientID, &e.ClientName, &month, &e.FinancialYear.StartYear, &e.FinancialYear.EndYear, &e.ServiceFee,
	}
	for i, src := range billing.Sources {
		lines[i] = billing.SourceLine{Source: src.Code, Currency: src.Currency}
		dest = append(dest, &lines[i].Raw, &lines[i].Rate, &lines[i].Amount, &lines[i].Commission)
	}
	dest = append(dest,
		&e.TotalCommission, &e.GSTRate, &e.GST, &e.TotalInvoice,
		&e.Outstanding.Previous, &e.Outstanding.Current, &operator, &e.Outstanding.Total,
		&e.IPRSRemarks, &e.PRSRemarks,
		&invoiceDate, &e.InvoiceNumber, &invoiceStatus, &status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}

	e.Month = billing.Month(month)
	e.MonthLabel = e.Month.Label(e.FinancialYear)
	e.Lines = lines
	e.Outstanding.Operator = billing.Operator(operator)
	e.InvoiceStatus = billing.InvoiceStatus(invoiceStatus)
	e.Status = billing.Status(status)
	if invoiceDate.Valid {
		e.InvoiceDate = invoiceDate.Time
	}
	return &e, nil
}

//Personal.AI order the ending
