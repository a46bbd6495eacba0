package analytics

import (
	"context"
	"time"

	"github.com/rcm/rcm/internal/domain/claim"
)

// Service computes read-only projections over the full claim set. Nothing
// here writes; every call recomputes from the repository snapshot.
type Service struct {
	claims claim.Repository
	now    func() time.Time
}

func NewService(claims claim.Repository) *Service {
	return &Service{claims: claims, now: time.Now}
}

// SetClock overrides the service clock; tests inject fixed times.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) RCMMetrics(ctx context.Context) (RCMMetrics, error) {
	claims, err := s.claims.ListAll(ctx)
	if err != nil {
		return RCMMetrics{}, err
	}
	return CalculateRCMMetrics(claims, s.now()), nil
}

func (s *Service) PipelineMetrics(ctx context.Context) (PipelineMetrics, error) {
	claims, err := s.claims.ListAll(ctx)
	if err != nil {
		return PipelineMetrics{}, err
	}
	return CalculateSubmissionPipelineMetrics(claims), nil
}

func (s *Service) StageAnalytics(ctx context.Context) (StageAnalytics, error) {
	claims, err := s.claims.ListAll(ctx)
	if err != nil {
		return StageAnalytics{}, err
	}
	return ComputeStageAnalytics(claims), nil
}
