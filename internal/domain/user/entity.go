package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User represents a portal account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	TenantID     uuid.UUID `json:"tenant_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates an active user in the given tenant.  The email is
// normalized before validation.
func NewUser(email, fullName, passwordHash string, tenantID uuid.UUID) (*User, error) {
	u := &User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: passwordHash,
		IsActive:     true,
		TenantID:     tenantID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail performs the minimal shape check used at registration.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}

// Validate checks the user invariants.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return errors.NewValidation("user id cannot be empty")
	}
	if !ValidEmail(u.Email) {
		return errors.NewValidation("email is invalid")
	}
	if u.PasswordHash == "" {
		return errors.NewValidation("password hash cannot be empty")
	}
	if u.TenantID == uuid.Nil {
		return errors.NewValidation("tenant id cannot be empty")
	}
	return nil
}
