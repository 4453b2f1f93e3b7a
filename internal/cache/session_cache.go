package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TutorHub-2025/messaging-service/internal/models"
)

const sessionCachePrefix = "session:"

// maxSessionTTL caps how long a validated session stays cached; the entry
// never outlives the session's own expiry.
const maxSessionTTL = 15 * time.Minute

// SessionCache fronts session-token validation with Redis. A nil Redis client
// disables caching entirely and every call degrades to a miss.
type SessionCache struct {
	helper *CacheHelper
}

func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{
		helper: NewCacheHelper(client, sessionCachePrefix),
	}
}

type cachedSession struct {
	Session *models.Session `json:"session"`
	User    *models.User    `json:"user"`
}

// Get returns the cached session and user for a token, or ErrCacheNotFound.
func (c *SessionCache) Get(ctx context.Context, token string) (*models.Session, *models.User, error) {
	var entry cachedSession
	if err := c.helper.Get(ctx, token, &entry); err != nil {
		return nil, nil, err
	}
	if entry.Session == nil || entry.User == nil {
		return nil, nil, ErrCacheNotFound
	}
	// Token is excluded from JSON serialization; the cache key carries it.
	entry.Session.Token = token
	return entry.Session, entry.User, nil
}

// Set caches a validated session. The TTL is the remaining session lifetime
// capped at maxSessionTTL; already-expired sessions are never cached.
func (c *SessionCache) Set(ctx context.Context, session *models.Session, user *models.User) error {
	remaining := time.Until(session.ExpiresAt)
	if remaining <= 0 {
		return nil
	}
	if remaining > maxSessionTTL {
		remaining = maxSessionTTL
	}

	return c.helper.Set(ctx, session.Token, cachedSession{Session: session, User: user}, remaining)
}

// Invalidate drops a token from the cache (logout).
func (c *SessionCache) Invalidate(ctx context.Context, token string) error {
	return c.helper.Delete(ctx, token)
}

// IsMiss reports whether err is a cache miss rather than a cache failure.
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheNotFound) || errors.Is(err, ErrCacheNotAvailable)
}
