package claim

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a claim does not exist.
var ErrNotFound = errors.New("claim not found")

// ListFilter narrows claim listings. Zero values mean "no filter".
type ListFilter struct {
	Status    Status
	PatientID string
	PayerID   string
}

type Repository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	GetByClaimNumber(ctx context.Context, number string) (*Claim, error)
	Update(ctx context.Context, c *Claim) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error)
	// ListAll returns every claim without pagination; used by the analytics
	// projections, which fold over the full claim set.
	ListAll(ctx context.Context) ([]*Claim, error)
}
