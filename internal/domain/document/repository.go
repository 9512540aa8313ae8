package document

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines document persistence.  Every read is scoped to a tenant.
type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]*Document, int64, error)
	// FindSimilar returns recent documents of the same type, excluding excludeID.
	FindSimilar(ctx context.Context, tenantID uuid.UUID, docType string, excludeID uuid.UUID, limit int) ([]Similar, error)
}
