// internal/reports/conversation/redis.go
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "report-workers/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix  = "report-context:"
	defaultMaxRetries = 5
	clearAllBatchSize = 100
)

type RedisOptions struct {
	KeyPrefix  string
	TTL        time.Duration
	MaxRetries int
	Now        func() time.Time
}

// RedisStore shares sessions between worker replicas. Each session is one
// JSON value; updates use WATCH/MULTI and are retried when another writer
// touched the key first.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	maxRetries int
	now        func() time.Time
}

func NewRedisStore(client redis.UniversalClient, opts RedisOptions) *RedisStore {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = defaultKeyPrefix
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Now == nil {
		opts.Now = systemNow
	}
	return &RedisStore{
		client:     client,
		prefix:     opts.KeyPrefix,
		ttl:        opts.TTL,
		maxRetries: opts.MaxRetries,
		now:        opts.Now,
	}
}

// valueReader is satisfied by both the client and a WATCH transaction.
type valueReader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get reads without writing: an unknown session yields a fresh Context and
// leaves no key behind.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Context, error) {
	c, err := s.load(ctx, s.client, sessionID)
	if err != nil {
		return nil, apperrors.NewContextStoreFailedError(sessionID, err)
	}
	return c, nil
}

func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(c *Context) error) error {
	key := s.key(sessionID)

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		var fnErr error

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			c, err := s.load(ctx, tx, sessionID)
			if err != nil {
				return err
			}

			if fnErr = fn(c); fnErr != nil {
				return fnErr
			}

			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encode context: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, s.ttl)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return nil
		case fnErr != nil:
			return fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return apperrors.NewContextStoreFailedError(sessionID, err)
		}
	}

	return apperrors.NewContextConflictError(sessionID, s.maxRetries)
}

func (s *RedisStore) load(ctx context.Context, rdb valueReader, sessionID string) (*Context, error) {
	data, err := rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewContext(sessionID, s.now()), nil
	}
	if err != nil {
		return nil, err
	}

	var c Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	if c.History == nil {
		c.History = []Entry{}
	}
	return &c, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return apperrors.NewContextStoreFailedError(sessionID, err)
	}
	return nil
}

// ClearAll deletes every key under the store prefix.
func (s *RedisStore) ClearAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", clearAllBatchSize).Iterator()

	batch := make([]string, 0, clearAllBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearAllBatchSize {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return apperrors.NewContextStoreFailedError("*", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return apperrors.NewContextStoreFailedError("*", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return apperrors.NewContextStoreFailedError("*", err)
		}
	}
	return nil
}

// Close is a no-op; the redis client belongs to the caller.
func (s *RedisStore) Close() error {
	return nil
}
