package redis

import (
	"context"
	"time"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// TokenRevocationStore remembers revoked access-token ids until the token
// would have expired anyway.
type TokenRevocationStore struct {
	client *Client
}

func NewTokenRevocationStore(client *Client) *TokenRevocationStore {
	return &TokenRevocationStore{client: client}
}

func (s *TokenRevocationStore) key(jti string) string {
	return s.client.Key("revoked", jti)
}

// Revoke marks jti as revoked for ttl.  A non-positive ttl means the token
// has already expired and nothing is stored.
func (s *TokenRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.InvalidArgument("token id is required")
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to revoke token")
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (s *TokenRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to check token revocation")
	}
	return n > 0, nil
}
