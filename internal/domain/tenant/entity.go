package tenant

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// DefaultName is used when a registering user does not name a tenant.
const DefaultName = "default"

// MaxNameLength bounds tenant names.
const MaxNameLength = 255

// Tenant is an isolated customer account.  Every user, document and claim
// assessment belongs to exactly one tenant.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTenant creates a tenant with a fresh identifier.  A blank name selects
// DefaultName.
func NewTenant(name string) (*Tenant, error) {
	t := &Tenant{
		ID:        uuid.New(),
		Name:      NormalizeName(name),
		CreatedAt: time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NormalizeName trims whitespace and falls back to DefaultName.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return name
}

// Validate checks the tenant invariants.
func (t *Tenant) Validate() error {
	if t.ID == uuid.Nil {
		return errors.NewValidation("tenant id cannot be empty")
	}
	if t.Name == "" {
		return errors.NewValidation("tenant name cannot be empty")
	}
	if len(t.Name) > MaxNameLength {
		return errors.NewValidation("tenant name cannot be longer than 255 characters")
	}
	return nil
}
