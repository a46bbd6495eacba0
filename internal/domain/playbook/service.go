package playbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rcm/rcm/internal/domain/claim"
)

type Service struct {
	repo   Repository
	claims claim.Repository
	proc   *Processor
	now    func() time.Time
}

func NewService(repo Repository, claims claim.Repository) *Service {
	return &Service{
		repo:   repo,
		claims: claims,
		proc:   NewProcessor(),
		now:    time.Now,
	}
}

// SetClock overrides the service clock; tests inject fixed times.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// GetConfig returns the stored playbook config, or the default set when the
// operator has never customized it.
func (s *Service) GetConfig(ctx context.Context) (Config, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return DefaultConfig(), nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// PutConfig validates and stores the playbook config wholesale.
func (s *Service) PutConfig(ctx context.Context, cfg Config) (Config, error) {
	if cfg.MaxRetryAttempts < 0 {
		return Config{}, fmt.Errorf("max_retry_attempts must not be negative")
	}
	for _, r := range cfg.CustomRules {
		if r.Code == "" {
			return Config{}, fmt.Errorf("rule code is required")
		}
		if !r.Strategy.Valid() {
			return Config{}, fmt.Errorf("invalid strategy %q for rule %s", r.Strategy, r.Code)
		}
	}
	cfg.UpdatedAt = s.now()
	if err := s.repo.Put(ctx, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ProcessDenial runs the playbook against one denied claim and persists the
// resulting claim when the processor changed it. Auto-resubmitted claims come
// back built and flagged; the resubmission scheduler picks them up from there.
func (s *Service) ProcessDenial(ctx context.Context, id uuid.UUID) (Outcome, error) {
	c, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return Outcome{}, err
	}
	out := s.proc.Process(*c, cfg, s.now())
	if out.Changed {
		if err := s.claims.Update(ctx, &out.Claim); err != nil {
			return Outcome{}, err
		}
	}
	return out, nil
}

// ProcessDenials sweeps every denied claim through the playbook. Claims the
// processor has already seen are skipped by its at-most-once guard.
func (s *Service) ProcessDenials(ctx context.Context) ([]Outcome, error) {
	claims, err := s.claims.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	var outcomes []Outcome
	for _, c := range claims {
		if c.Status != claim.StatusDenied {
			continue
		}
		out := s.proc.Process(*c, cfg, s.now())
		if out.Changed {
			if err := s.claims.Update(ctx, &out.Claim); err != nil {
				return nil, err
			}
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
