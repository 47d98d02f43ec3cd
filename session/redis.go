package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/contextual-ai/converse/core/protocol"
)

const (
	// Redis key prefixes for session histories and creation markers. The
	// marker records first reference, since a Redis list only exists once a
	// turn has been pushed.
	sessionKeyPrefix = "session:"
	createdKeyPrefix = "session-created:"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Store that keeps each session history in a Redis
// list of JSON-encoded turns. A non-zero ttl bounds idle session lifetime;
// the TTL is refreshed on every read and write.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) GetOrCreate(ctx context.Context, id string) ([]protocol.Turn, bool, error) {
	if id == "" {
		return nil, false, ErrEmptySessionID
	}

	// SETNX on the marker makes first reference observable even though the
	// history list itself only exists after the first push.
	created, err := s.client.SetNX(ctx, s.createdKey(id), 1, s.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}

	history, err := s.read(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return history, created, nil
}

func (s *redisStore) Get(ctx context.Context, id string) ([]protocol.Turn, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	exists, err := s.client.Exists(ctx, s.key(id), s.createdKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}
	if exists == 0 {
		return nil, ErrUnknownSession
	}

	return s.read(ctx, id)
}

func (s *redisStore) Append(ctx context.Context, id string, turns ...protocol.Turn) error {
	if id == "" {
		return ErrEmptySessionID
	}
	if len(turns) == 0 {
		return nil
	}

	payloads := make([]any, 0, len(turns))
	for _, turn := range turns {
		val, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
		}
		payloads = append(payloads, val)
	}

	key := s.key(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payloads...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
			pipe.Expire(ctx, s.createdKey(id), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, id, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

func (s *redisStore) read(ctx context.Context, id string) ([]protocol.Turn, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	key := s.key(id)
	vals, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	turns := make([]protocol.Turn, 0, len(vals))
	for _, val := range vals {
		var turn protocol.Turn
		if err := json.Unmarshal([]byte(val), &turn); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
		}
		turns = append(turns, turn)
	}

	if s.ttl > 0 && len(turns) > 0 {
		// Refresh TTL on read so active conversations stay alive.
		_ = s.client.Expire(ctx, key, s.ttl).Err()
		_ = s.client.Expire(ctx, s.createdKey(id), s.ttl).Err()
	}

	return turns, nil
}

func (s *redisStore) key(id string) string {
	return sessionKeyPrefix + id
}

func (s *redisStore) createdKey(id string) string {
	return createdKeyPrefix + id
}
