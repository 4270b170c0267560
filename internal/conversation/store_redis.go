package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lookupbot/pkg/platform/sentinel"
)

const conversationKeyPrefix = "lookupbot:conversation:"

// RedisStore shares conversation state across instances; expiry uses the
// key TTL.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func key(id string) string {
	return conversationKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (Conversation, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Conversation{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("get conversation: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var c Conversation
	if err := json.Unmarshal(raw, &c); err != nil {
		return Conversation{}, fmt.Errorf("decode conversation: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, c Conversation, ttl time.Duration) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if err := s.client.Set(ctx, key(c.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save conversation: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete conversation: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
