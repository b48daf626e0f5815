package ports

import "context"

// HealthChecker probes one external dependency for the deep health
// endpoint.
type HealthChecker interface {
	// Ping verifies connectivity, nil means healthy.
	Ping(ctx context.Context) error
	// Name labels the dependency in health output, e.g. "postgresql".
	Name() string
}
