package cli

import (
	"context"

	appbilling "github.com/turtacn/MRM-Billing/internal/application/billing"
	"github.com/turtacn/MRM-Billing/internal/application/reporting"
	"github.com/turtacn/MRM-Billing/internal/bootstrap"
	"github.com/turtacn/MRM-Billing/internal/config"
	"github.com/turtacn/MRM-Billing/internal/domain/client"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

// Migrator is the schema migration surface of "mrm migrate".
type Migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
}

// Backend is everything a CLI command may call.
type Backend struct {
	Billing  appbilling.Service
	Exports  reporting.ExportService
	Clients  client.Directory
	Settings settings.Provider
	Migrator func() (Migrator, error)

	closeFn func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// NewBackend assembles a backend from already-built parts; closeFn may be nil.
func NewBackend(billing appbilling.Service, exports reporting.ExportService, clients client.Directory, set settings.Provider, closeFn func() error) *Backend {
	return &Backend{Billing: billing, Exports: exports, Clients: clients, Settings: set, closeFn: closeFn}
}

// BackendFactory opens a Backend for one CLI invocation.
type BackendFactory func(ctx context.Context, cfg *config.Config, log logging.Logger) (*Backend, error)

// RuntimeBackend opens the full runtime described by cfg: postgres plus the
// enabled cache, event and storage backends.
func RuntimeBackend(ctx context.Context, cfg *config.Config, log logging.Logger) (*Backend, error) {
	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b := NewBackend(rt.Billing, rt.Exports, rt.Clients, rt.Settings, rt.Close)
	b.Migrator = func() (Migrator, error) {
		m, err := postgres.NewMigrator(rt.DB.DB(), log)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return b, nil
}

//Personal.AI order the ending
