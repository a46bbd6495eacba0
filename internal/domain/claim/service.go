package claim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetClock overrides the service clock; tests inject fixed times.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) Create(ctx context.Context, c *Claim) error {
	if c.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if c.PayerID == "" {
		return fmt.Errorf("payer_id is required")
	}
	if c.DateOfService.IsZero() {
		return fmt.Errorf("date_of_service is required")
	}
	if c.Status == "" {
		c.Status = StatusNeedsReview
	}
	if !c.Status.Valid() {
		return fmt.Errorf("invalid claim status: %s", c.Status)
	}
	if len(c.StateHistory) == 0 {
		c.StateHistory = AppendHistory(nil, c.Status, "Claim created", s.now())
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByClaimNumber(ctx context.Context, number string) (*Claim, error) {
	return s.repo.GetByClaimNumber(ctx, number)
}

func (s *Service) Update(ctx context.Context, c *Claim) error {
	if c.Status != "" && !c.Status.Valid() {
		return fmt.Errorf("invalid claim status: %s", c.Status)
	}
	c.UpdatedAt = s.now()
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("invalid claim status: %s", filter.Status)
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// ApplyFix applies the suggested fix for the given field and persists the
// result. Applying an already-applied fix persists nothing new beyond the
// restamped claim.
func (s *Service) ApplyFix(ctx context.Context, id uuid.UUID, field, note string) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var fix *SuggestedFix
	for i := range c.SuggestedFixes {
		if c.SuggestedFixes[i].Field == field {
			fix = &c.SuggestedFixes[i]
			break
		}
	}
	if fix == nil {
		return nil, fmt.Errorf("no suggested fix for field %q", field)
	}
	updated := ApplyFix(*c, *fix, note, s.now())
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ApplyAllFixes applies every unapplied suggested fix in list order.
func (s *Service) ApplyAllFixes(ctx context.Context, id uuid.UUID, note string) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := ApplyAllFixes(*c, note, s.now())
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Submit records a submission attempt: built -> submitted, attempt count
// incremented exactly once. The clearinghouse hand-off itself happens
// outside this service.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusBuilt {
		return nil, fmt.Errorf("claim %s is %s, only built claims can be submitted", c.ClaimNumber, c.Status)
	}
	now := s.now()
	c.Status = StatusSubmitted
	c.AttemptCount++
	c.StateHistory = AppendHistory(c.StateHistory, StatusSubmitted,
		fmt.Sprintf("Submission attempt #%d", c.AttemptCount), now)
	c.UpdatedAt = now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// MarkAwaiting records that the clearinghouse accepted the file for
// processing: submitted -> awaiting_277ca.
func (s *Service) MarkAwaiting(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusSubmitted {
		return nil, fmt.Errorf("claim %s is %s, expected submitted", c.ClaimNumber, c.Status)
	}
	now := s.now()
	c.Status = StatusAwaiting277CA
	c.StateHistory = AppendHistory(c.StateHistory, StatusAwaiting277CA, "Awaiting 277CA acknowledgment", now)
	c.UpdatedAt = now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordAcknowledgment applies a 277CA outcome: submitted/awaiting_277ca ->
// accepted_277ca or rejected_277ca.
func (s *Service) RecordAcknowledgment(ctx context.Context, id uuid.UUID, resp PayerResponse) (*Claim, error) {
	if resp.Type != Response277CA {
		return nil, fmt.Errorf("acknowledgment must be a 277CA response, got %s", resp.Type)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusSubmitted && c.Status != StatusAwaiting277CA {
		return nil, fmt.Errorf("claim %s is %s, expected submitted or awaiting_277ca", c.ClaimNumber, c.Status)
	}
	now := s.now()
	if resp.Accepted {
		c.Status = StatusAccepted277CA
		c.StateHistory = AppendHistory(c.StateHistory, StatusAccepted277CA, "277CA accepted by payer", now)
	} else {
		c.Status = StatusRejected277CA
		r := resp
		c.RejectionResponse = &r
		note := "277CA rejected"
		if resp.Message != "" {
			note = fmt.Sprintf("277CA rejected: %s", resp.Message)
		}
		c.StateHistory = AppendHistory(c.StateHistory, StatusRejected277CA, note, now)
	}
	c.UpdatedAt = now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordRemittance applies an 835 outcome: accepted_277ca -> paid when the
// payer paid, -> denied otherwise (CARC/RARC codes kept on the claim for the
// denial playbook).
func (s *Service) RecordRemittance(ctx context.Context, id uuid.UUID, resp PayerResponse, paidAmount float64) (*Claim, error) {
	if resp.Type != Response835 {
		return nil, fmt.Errorf("remittance must be an 835 response, got %s", resp.Type)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != StatusAccepted277CA && c.Status != StatusAwaiting277CA && c.Status != StatusSubmitted {
		return nil, fmt.Errorf("claim %s is %s, cannot post a remittance", c.ClaimNumber, c.Status)
	}
	now := s.now()
	r := resp
	c.PayerResponse = &r
	if resp.Accepted {
		c.Status = StatusPaid
		c.PaidAmount = paidAmount
		c.StateHistory = AppendHistory(c.StateHistory, StatusPaid,
			fmt.Sprintf("Payment posted: %.2f", paidAmount), now)
	} else {
		c.Status = StatusDenied
		note := "Claim denied"
		if len(resp.CARCCodes) > 0 {
			note = fmt.Sprintf("Claim denied (CARC %s)", resp.CARCCodes[0])
		}
		c.StateHistory = AppendHistory(c.StateHistory, StatusDenied, note, now)
	}
	c.UpdatedAt = now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
