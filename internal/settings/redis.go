package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a Redis server. The settings record
// is a JSON string key; opt-in flags live in one hash keyed by post id.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts *redis.Options, prefix string) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis %s: %w", opts.Addr, err)
	}
	return newRedisStore(client, prefix), nil
}

func newRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "koraki"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) settingsKey() string {
	return s.prefix + ":" + Name
}

func (s *RedisStore) metaKey() string {
	return s.prefix + ":post_meta:" + OptInMetaKey
}

func (s *RedisStore) Load(ctx context.Context) (Record, error) {
	raw, err := s.client.Get(ctx, s.settingsKey()).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("loading settings: %w", err)
	}

	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, fmt.Errorf("decoding settings: %w", err)
	}
	return r, nil
}

func (s *RedisStore) Save(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := s.client.Set(ctx, s.settingsKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.settingsKey()).Err(); err != nil {
		return fmt.Errorf("clearing settings: %w", err)
	}
	return nil
}

func (s *RedisStore) OptIn(ctx context.Context, postID int64) (string, error) {
	value, err := s.client.HGet(ctx, s.metaKey(), strconv.FormatInt(postID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading opt-in flag: %w", err)
	}
	return value, nil
}

func (s *RedisStore) SetOptIn(ctx context.Context, postID int64, value string) error {
	if err := s.client.HSet(ctx, s.metaKey(), strconv.FormatInt(postID, 10), value).Err(); err != nil {
		return fmt.Errorf("writing opt-in flag: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
