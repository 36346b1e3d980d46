package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// NewMigrateCmd manages the postgres schema.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return errors.NewValidationError("--steps must be at least 1")
			}
			return withMigrator(cmd, func(m Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m Migrator) error { return printVersion(cmd, m) })
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(Migrator) error) error {
	return withBackend(cmd, func(_ context.Context, _ *CLIContext, b *Backend) error {
		if b.Migrator == nil {
			return errors.New(errors.ErrCodeServiceUnavailable, "migrations are not available for this backend")
		}
		m, err := b.Migrator()
		if err != nil {
			return err
		}
		return fn(m)
	})
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	return PrintResult(cmd, schemaVersion{Version: v, Dirty: dirty})
}

type schemaVersion struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s schemaVersion) String() string {
	if s.Dirty {
		return fmt.Sprintf("schema version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("schema version %d", s.Version)
}

//Personal.AI order the ending
