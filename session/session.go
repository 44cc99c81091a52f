package backoffice_integration_session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModels "github.com/zarbox/backoffice-integration/models"
	boStorage "github.com/zarbox/backoffice-integration/storage"
)

// RedisSessionStore persists the panel session so a process restart does not
// force a new login.
type RedisSessionStore struct {
	Instance *boStorage.RedisInstance
	Key      string
}

var _ boInterfaces.SessionStore = &RedisSessionStore{}

func NewRedisSessionStore(instance *boStorage.RedisInstance, key string) *RedisSessionStore {
	return &RedisSessionStore{
		Instance: instance,
		Key:      key,
	}
}

func (s *RedisSessionStore) Load(ctx context.Context) (*boModels.Session, error) {
	raw, err := s.Instance.RDB.Get(ctx, s.Key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "loading session")
	}

	var session boModels.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, eris.Wrap(err, "unmarshalling session")
	}
	if session.Expired() {
		return nil, nil
	}

	return &session, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, session *boModels.Session) error {
	if session == nil || session.Token == "" {
		return eris.New("session token is empty")
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return eris.Wrap(err, "marshalling session")
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = time.Until(session.ExpiresAt)
		if ttl <= 0 {
			return eris.New("session is already expired")
		}
	}

	if err := s.Instance.RDB.Set(ctx, s.Key, string(raw), ttl).Err(); err != nil {
		return eris.Wrap(err, "saving session")
	}

	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context) error {
	if err := s.Instance.RDB.Del(ctx, s.Key).Err(); err != nil {
		return eris.Wrap(err, "clearing session")
	}
	return nil
}

// MemorySessionStore backs tests and single-shot CLI usage.
type MemorySessionStore struct {
	mu      sync.RWMutex
	session *boModels.Session
}

var _ boInterfaces.SessionStore = &MemorySessionStore{}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load(ctx context.Context) (*boModels.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.Expired() {
		return nil, nil
	}
	session := *s.session
	return &session, nil
}

func (s *MemorySessionStore) Set(ctx context.Context, session *boModels.Session) error {
	if session == nil || session.Token == "" {
		return eris.New("session token is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	s.session = &clone
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
