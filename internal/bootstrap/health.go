package bootstrap

import (
	"context"
)

// HealthCheck is one dependency probe for a readiness endpoint.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

type componentCheck struct {
	name string
	fn   func(ctx context.Context) error
}

func (c componentCheck) Name() string                    { return c.name }
func (c componentCheck) Check(ctx context.Context) error { return c.fn(ctx) }

// HealthChecks returns a probe for postgres and for each enabled backend.
func (r *Runtime) HealthChecks() []HealthCheck {
	var checks []HealthCheck
	if r.DB != nil {
		checks = append(checks, componentCheck{name: "postgres", fn: r.DB.HealthCheck})
	}
	if r.Redis != nil {
		checks = append(checks, componentCheck{name: "redis", fn: r.Redis.Ping})
	}
	if r.Objects != nil {
		checks = append(checks, componentCheck{name: "minio", fn: r.Objects.HealthCheck})
	}
	return checks
}

//Personal.AI order the ending
