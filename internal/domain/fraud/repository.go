package fraud

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists assessments per tenant.
type Repository interface {
	Save(ctx context.Context, r *Record) error
	// ListByTenant returns the newest records first.
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*Record, error)
}
