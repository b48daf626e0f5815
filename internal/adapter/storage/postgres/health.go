package postgres

import "context"

// HealthCheck reports database reachability for the deep health endpoint.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping verifies a live connection can reach the database.
func (h *HealthCheck) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// Name identifies this dependency in health output.
func (h *HealthCheck) Name() string {
	return "postgresql"
}
