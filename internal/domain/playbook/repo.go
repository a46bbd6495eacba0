package playbook

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no playbook config has been stored yet.
// Callers typically fall back to DefaultConfig.
var ErrNotConfigured = errors.New("playbook not configured")

// Repository stores the single denial-playbook configuration.
type Repository interface {
	Get(ctx context.Context) (Config, error)
	Put(ctx context.Context, cfg Config) error
}
