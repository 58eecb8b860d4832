package artifact

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL bounds how long an artifact outlives an abandoned session.
	TTL time.Duration
	// Timeout applies to every store operation.
	Timeout time.Duration
	MaxSize int
}

// RedisStore keeps artifacts in Redis strings with a per-session index set so
// a session's frames can be listed and dropped together.
type RedisStore struct {
	client *redis.Client
	opts   RedisOptions
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(optFns ...func(o *RedisOptions)) (*RedisStore, error) {
	opts := RedisOptions{
		Addr:      "localhost:6379",
		KeyPrefix: "agentrelay:",
		TTL:       time.Hour,
		Timeout:   5 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	s := NewRedisStoreFromClient(client, func(o *RedisOptions) { *o = opts })
	ctx, cancel := s.ctx()
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{KeyPrefix: "agentrelay:", TTL: time.Hour, Timeout: 5 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, opts: opts}
}

func (s *RedisStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opts.Timeout)
}

func (s *RedisStore) dataKey(sessionID, artifactID string) string {
	return s.opts.KeyPrefix + "artifact:" + sessionID + ":" + artifactID
}

func (s *RedisStore) indexKey(sessionID string) string {
	return s.opts.KeyPrefix + "artifacts:" + sessionID
}

// Save stores (or overwrites) the artifact bytes.
func (s *RedisStore) Save(sessionID, artifactID string, data []byte) error {
	if s.opts.MaxSize > 0 && len(data) > s.opts.MaxSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), s.opts.MaxSize)
	}
	ctx, cancel := s.ctx()
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.dataKey(sessionID, artifactID), data, s.opts.TTL)
	pipe.SAdd(ctx, s.indexKey(sessionID), artifactID)
	if s.opts.TTL > 0 {
		pipe.Expire(ctx, s.indexKey(sessionID), s.opts.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save artifact %s: %w", artifactID, err)
	}
	return nil
}

// Get returns the artifact bytes or ErrNotFound.
func (s *RedisStore) Get(sessionID, artifactID string) ([]byte, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	data, err := s.client.Get(ctx, s.dataKey(sessionID, artifactID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %s: %w", artifactID, err)
	}
	return data, nil
}

// List returns the sorted artifact ids of the session.
func (s *RedisStore) List(sessionID string) ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	ids, err := s.client.SMembers(ctx, s.indexKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact or returns ErrNotFound.
func (s *RedisStore) Delete(sessionID, artifactID string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	n, err := s.client.Del(ctx, s.dataKey(sessionID, artifactID)).Result()
	if err != nil {
		return fmt.Errorf("delete artifact %s: %w", artifactID, err)
	}
	if err := s.client.SRem(ctx, s.indexKey(sessionID), artifactID).Err(); err != nil {
		return fmt.Errorf("delete artifact %s: %w", artifactID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession drops every artifact of the session together with its index.
func (s *RedisStore) DeleteSession(sessionID string) error {
	ids, err := s.List(sessionID)
	if err != nil {
		return err
	}
	ctx, cancel := s.ctx()
	defer cancel()

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.dataKey(sessionID, id))
	}
	keys = append(keys, s.indexKey(sessionID))
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete session artifacts: %w", err)
	}
	return nil
}

// Ping checks if the store is healthy.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
