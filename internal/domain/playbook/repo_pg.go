package playbook

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns the Postgres-backed playbook repository. The config is a
// single row; Put upserts it.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Get(ctx context.Context) (Config, error) {
	var cfg Config
	err := r.pool.QueryRow(ctx, `
		SELECT auto_retry_enabled, max_retry_attempts, custom_rules, updated_at
		FROM playbook_config WHERE id = 1
	`).Scan(&cfg.AutoRetryEnabled, &cfg.MaxRetryAttempts, &cfg.CustomRules, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Config{}, ErrNotConfigured
		}
		return Config{}, fmt.Errorf("get playbook config: %w", err)
	}
	return cfg, nil
}

func (r *repoPG) Put(ctx context.Context, cfg Config) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO playbook_config (id, auto_retry_enabled, max_retry_attempts, custom_rules, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			auto_retry_enabled = EXCLUDED.auto_retry_enabled,
			max_retry_attempts = EXCLUDED.max_retry_attempts,
			custom_rules = EXCLUDED.custom_rules,
			updated_at = EXCLUDED.updated_at
	`, cfg.AutoRetryEnabled, cfg.MaxRetryAttempts, cfg.CustomRules, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put playbook config: %w", err)
	}
	return nil
}
