package backoffice_integration_storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	boInterfaces "github.com/zarbox/backoffice-integration/interfaces"
	boModels "github.com/zarbox/backoffice-integration/models"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

// RedisListStateStore keeps the last-used ListParams of every table under
// one hash, field per storage key ("admin.deposits", "trader.allocations").
type RedisListStateStore struct {
	Instance *RedisInstance
}

var _ boInterfaces.ListStateStore = &RedisListStateStore{}

func NewRedisListStateStore(instance *RedisInstance) *RedisListStateStore {
	return &RedisListStateStore{Instance: instance}
}

func (s *RedisListStateStore) Load(ctx context.Context, storageKey string) (*boModels.ListParams, error) {
	raw, err := s.Instance.RDB.HGet(ctx, boUtil.ListStateRedis, storageKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "loading list state")
	}

	var params boModels.ListParams
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		// A corrupt entry must not wedge the screen; treat it as absent.
		return nil, nil
	}

	return &params, nil
}

func (s *RedisListStateStore) Save(ctx context.Context, storageKey string, params *boModels.ListParams) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return eris.Wrap(err, "marshalling list state")
	}

	if err := s.Instance.RDB.HSet(ctx, boUtil.ListStateRedis, storageKey, string(raw)).Err(); err != nil {
		return eris.Wrap(err, "saving list state")
	}

	return nil
}

func (s *RedisListStateStore) Delete(ctx context.Context, storageKey string) error {
	if err := s.Instance.RDB.HDel(ctx, boUtil.ListStateRedis, storageKey).Err(); err != nil {
		return eris.Wrap(err, "deleting list state")
	}
	return nil
}

// MemoryListStateStore is the in-process fallback used by tests and by
// deployments without redis.
type MemoryListStateStore struct {
	mu     sync.RWMutex
	states map[string]boModels.ListParams
}

var _ boInterfaces.ListStateStore = &MemoryListStateStore{}

func NewMemoryListStateStore() *MemoryListStateStore {
	return &MemoryListStateStore{
		states: make(map[string]boModels.ListParams),
	}
}

func (s *MemoryListStateStore) Load(ctx context.Context, storageKey string) (*boModels.ListParams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	params, ok := s.states[storageKey]
	if !ok {
		return nil, nil
	}
	clone := params.Clone()
	return &clone, nil
}

func (s *MemoryListStateStore) Save(ctx context.Context, storageKey string, params *boModels.ListParams) error {
	if params == nil {
		return eris.New("nil list params")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[storageKey] = params.Clone()
	return nil
}

func (s *MemoryListStateStore) Delete(ctx context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, storageKey)
	return nil
}
