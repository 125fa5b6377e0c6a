package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "monitor:session"

// RedisStore keeps one JSON document per session slot, each with the
// session TTL. Writing either slot refreshes the TTL of both.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: client, ttl: ttl}
}

// NewRedisStoreFromURL parses a redis:// URL and creates a RedisStore.
func NewRedisStoreFromURL(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), ttl), nil
}

// Client exposes the underlying client for health checks.
func (s *RedisStore) Client() *redis.Client { return s.redis }

func (s *RedisStore) slotKey(id string, slot Slot) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, id, slot)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	vals, err := s.redis.MGet(ctx, s.slotKey(id, SlotBase), s.slotKey(id, SlotCurrent)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	st := &State{}
	for i, slot := range Slots {
		raw, ok := vals[i].(string)
		if !ok {
			continue
		}
		var ds datanorm.Dataset
		if err := json.Unmarshal([]byte(raw), &ds); err != nil {
			return nil, fmt.Errorf("decode session %s slot %s: %w", id, slot, err)
		}
		st.set(slot, &ds)
	}
	if st.Empty() {
		return nil, ErrSessionNotFound
	}
	return st, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, slot Slot, ds *datanorm.Dataset) error {
	if _, err := ParseSlot(string(slot)); err != nil {
		return err
	}
	if ds == nil {
		return s.Delete(ctx, id, slot)
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.slotKey(id, slot), data, s.ttl)
	for _, other := range Slots {
		if other != slot && s.ttl > 0 {
			pipe.Expire(ctx, s.slotKey(id, other), s.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session %s slot %s: %w", id, slot, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string, slot Slot) error {
	if _, err := ParseSlot(string(slot)); err != nil {
		return err
	}
	if err := s.redis.Del(ctx, s.slotKey(id, slot)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session %s slot %s: %w", id, slot, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.slotKey(id, SlotBase), s.slotKey(id, SlotCurrent)).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", id, err)
	}
	return nil
}
