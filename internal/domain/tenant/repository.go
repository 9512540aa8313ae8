package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for tenants.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// GetByName returns ErrCodeTenantNotFound when no tenant has the name.
	GetByName(ctx context.Context, name string) (*Tenant, error)
}
