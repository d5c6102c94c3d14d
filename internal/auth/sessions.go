package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/persistence"
)

const revokedKeyPrefix = "session:revoked:"

// SessionStore tracks revoked session tokens. Logout writes the token ID here
// so the credential dies immediately even though the JWT itself is stateless.
type SessionStore struct {
	redis  *persistence.Redis
	logger *zap.Logger
}

// NewSessionStore constructs the store.
func NewSessionStore(redis *persistence.Redis, logger *zap.Logger) *SessionStore {
	return &SessionStore{redis: redis, logger: logger}
}

// Revoke marks a token ID as revoked until its natural expiry.
func (s *SessionStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been revoked. A store error is
// logged and treated as not revoked so an unreachable Redis does not lock
// every session out.
func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) bool {
	n, err := s.redis.Client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		s.logger.Warn("session revocation lookup failed", zap.Error(err))
		return false
	}
	return n > 0
}
