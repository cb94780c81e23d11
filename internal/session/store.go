package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tradeboard/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const instancesRedisKey = "dashboard:indicator_instances"

// Store persists the indicator instance list to Redis so a restart brings
// back the user's chart setup. The in-memory session stays the source of
// truth; Redis is write-behind only.
type Store struct {
	rdb *goredis.Client
}

// NewStore creates a Store backed by the given Redis client.
func NewStore(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb}
}

// Load restores the saved instance list from Redis (if available).
// Called once during startup. Returns false if nothing usable is stored.
func (s *Store) Load(ctx context.Context) ([]model.IndicatorInstance, bool) {
	if s == nil || s.rdb == nil {
		return nil, false
	}
	data, err := s.rdb.Get(ctx, instancesRedisKey).Result()
	if err != nil {
		return nil, false
	}
	var list []model.IndicatorInstance
	if json.Unmarshal([]byte(data), &list) != nil {
		return nil, false
	}
	log.Printf("[session] restored %d indicator instances from Redis", len(list))
	return list, true
}

// Save persists the instance list to Redis. Fire-and-forget: a failed write
// is logged and the session carries on with its in-memory state.
func (s *Store) Save(list []model.IndicatorInstance) {
	if s == nil || s.rdb == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.rdb.Set(ctx, instancesRedisKey, data, 0).Err(); err != nil {
		log.Printf("[session] WARNING: failed to persist indicator instances: %v", err)
	}
}
