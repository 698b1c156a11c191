// internal/reports/conversation/store.go
package conversation

import (
	"context"
	"fmt"
	"time"

	"report-workers/internal/common/config"
	"report-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// Store owns every session's Context. Operations on one session are
// serialized; different sessions never block each other.
type Store interface {
	// Get returns a snapshot of the session, creating it Empty on first use.
	Get(ctx context.Context, sessionID string) (*Context, error)
	// Update runs fn as one read-modify-write of the session. Changes made by
	// fn are discarded when it returns an error.
	Update(ctx context.Context, sessionID string, fn func(c *Context) error) error
	Clear(ctx context.Context, sessionID string) error
	ClearAll(ctx context.Context) error
	Close() error
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// NewStore builds the store selected by cfg.Store. rdb is only required for
// the redis store.
func NewStore(cfg config.ConversationConfig, rdb redis.UniversalClient, log logger.Logger) (Store, error) {
	ttl := config.GetDuration(cfg.SessionTTL)

	switch cfg.Store {
	case "", StoreMemory:
		log.Info("Using in-memory conversation store", map[string]interface{}{
			"sessionTTL": ttl.String(),
		})
		return NewMemoryStore(MemoryOptions{
			TTL:             ttl,
			JanitorInterval: config.GetDuration(cfg.JanitorInterval),
		}), nil
	case StoreRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis conversation store requires a redis client")
		}
		log.Info("Using redis conversation store", map[string]interface{}{
			"sessionTTL": ttl.String(),
			"keyPrefix":  cfg.KeyPrefix,
		})
		return NewRedisStore(rdb, RedisOptions{
			KeyPrefix:  cfg.KeyPrefix,
			TTL:        ttl,
			MaxRetries: cfg.MaxUpdateRetries,
		}), nil
	default:
		return nil, fmt.Errorf("unknown conversation store %q", cfg.Store)
	}
}

func systemNow() time.Time {
	return time.Now()
}
