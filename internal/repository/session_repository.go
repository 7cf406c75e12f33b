package repository

import (
	"time"

	"research-assistant/internal/domain"

	"github.com/patrickmn/go-cache"
)

const sessionCleanupInterval = 10 * time.Minute

// SessionRepository keeps sessions in process memory with a sliding TTL.
type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository creates a session store whose entries expire after
// ttl without activity. Expired sessions are purged every 10 minutes.
func NewSessionRepository(ttl time.Duration, logger domain.Logger) *SessionRepository {
	c := cache.New(ttl, sessionCleanupInterval)
	c.OnEvicted(func(id string, _ interface{}) {
		logger.Debug("Session expired", "session_id", id)
	})
	return &SessionRepository{
		cache: c,
	}
}

// Save stores the session and restarts its expiry clock.
func (r *SessionRepository) Save(session *domain.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*domain.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*domain.Session), true
	}
	return nil, false
}

// Count returns the number of live sessions, expired ones included until
// the next purge.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
