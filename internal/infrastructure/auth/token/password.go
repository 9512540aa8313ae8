package token

import (
	stdliberrors "errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// PasswordHasher hashes and checks passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInvalidArgument, "failed to hash password")
	}
	return string(b), nil
}

// Check reports whether password matches hash.  A malformed hash is an error,
// a mismatch is not.
func (h *PasswordHasher) Check(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if stdliberrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeInternal, "failed to compare password hash")
}
