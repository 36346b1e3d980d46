package repositories

import (
	"context"
	"database/sql"

	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

const clientColumns = `client_id, name, category, fee, is_active, email, phone, address, pan, gstin,
	bank_name, account_number, ifsc, branch, created_at, updated_at`

// ClientRepo is the PostgreSQL client.Directory.
type ClientRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

func NewClientRepo(conn *postgres.Connection, log logging.Logger) *ClientRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ClientRepo{conn: conn, log: log, executor: conn.DB()}
}

var _ client.Directory = (*ClientRepo)(nil)

func (r *ClientRepo) Get(ctx context.Context, clientID string) (*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE client_id = $1`
	c, err := scanClient(r.executor.QueryRowContext(ctx, query, clientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, client.NotFound(clientID)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to get client")
	}
	return c, nil
}

// List returns clients ordered by name, optionally only the active ones.
func (r *ClientRepo) List(ctx context.Context, activeOnly bool) ([]*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY LOWER(name), client_id`

	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list clients")
	}
	defer rows.Close()

	var out []*client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan client")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate clients")
	}
	return out, nil
}

// Save validates and upserts c on client_id.
func (r *ClientRepo) Save(ctx context.Context, c *client.Client) (*client.Client, error) {
	saved := *c
	saved.Normalize()
	if err := saved.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO clients (
			client_id, name, category, fee, is_active, email, phone, address, pan, gstin,
			bank_name, account_number, ifsc, branch
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (client_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			fee = EXCLUDED.fee,
			is_active = EXCLUDED.is_active,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			pan = EXCLUDED.pan,
			gstin = EXCLUDED.gstin,
			bank_name = EXCLUDED.bank_name,
			account_number = EXCLUDED.account_number,
			ifsc = EXCLUDED.ifsc,
			branch = EXCLUDED.branch,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := r.executor.QueryRowContext(ctx, query,
		saved.ClientID, saved.Name, string(saved.Category), saved.Fee, saved.IsActive,
		saved.Email, saved.Phone, saved.Address, saved.PAN, saved.GSTIN,
		saved.Bank.BankName, saved.Bank.AccountNumber, saved.Bank.IFSC, saved.Bank.Branch,
	).Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save client")
	}

	r.log.Debug("client saved", logging.ClientID(saved.ClientID))
	return &saved, nil
}

func scanClient(sc scanner) (*client.Client, error) {
	var (
		c        client.Client
		category string
	)
	err := sc.Scan(
		&c.ClientID, &c.Name, &category, &c.Fee, &c.IsActive,
		&c.Email, &c.Phone, &c.Address, &c.PAN, &c.GSTIN,
		&c.Bank.BankName, &c.Bank.AccountNumber, &c.Bank.IFSC, &c.Bank.Branch,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Category = client.Category(category)
	return &c, nil
}

//Personal.AI order the ending
