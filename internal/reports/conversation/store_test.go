// internal/reports/conversation/store_test.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"report-workers/internal/common/config"
	apperrors "report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/params"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func record(command string, id catalog.ReportID) func(c *Context) error {
	return func(c *Context) error {
		c.Record(command, params.Params{}, id, catalog.FormatJSON, testNow)
		return nil
	}
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, RedisOptions{MaxRetries: 50, Now: func() time.Time { return testNow }}), mr, client
}

// storeContract runs the behavior every Store must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("lazily creates empty sessions", func(t *testing.T) {
		c, err := store.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, "fresh", c.SessionID)
		assert.False(t, c.Primed())
	})

	t.Run("update persists", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, "a", record("reporte de ventas", catalog.VentasBasico)))

		c, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, c.Primed())
		assert.Equal(t, catalog.VentasBasico, c.LastReportType)
	})

	t.Run("failed update is discarded", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Update(ctx, "a", func(c *Context) error {
			c.Clear()
			return boom
		})
		assert.ErrorIs(t, err, boom)

		c, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, c.Primed())
	})

	t.Run("get returns a snapshot", func(t *testing.T) {
		c, err := store.Get(ctx, "a")
		require.NoError(t, err)
		c.Clear()

		again, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, again.Primed())
	})

	t.Run("clear resets one session", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, "b", record("analisis abc", catalog.AnalisisABC)))
		require.NoError(t, store.Clear(ctx, "a"))

		a, err := store.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, a.Primed())

		b, err := store.Get(ctx, "b")
		require.NoError(t, err)
		assert.True(t, b.Primed())
	})

	t.Run("clear all", func(t *testing.T) {
		require.NoError(t, store.ClearAll(ctx))

		b, err := store.Get(ctx, "b")
		require.NoError(t, err)
		assert.False(t, b.Primed())
	})

	t.Run("concurrent updates to one session are not lost", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, store.Update(ctx, "busy", record(fmt.Sprintf("cmd-%d", i), catalog.VentasBasico)))
			}(i)
		}
		wg.Wait()

		c, err := store.Get(ctx, "busy")
		require.NoError(t, err)
		assert.Len(t, c.History, 8)
	})
}

// ==========================
// MemoryStore Tests
// ==========================

func TestMemoryStore_Contract(t *testing.T) {
	store := NewMemoryStore(MemoryOptions{})
	defer store.Close()
	storeContract(t, store)
}

func TestMemoryStore_NoExpiryByDefault(t *testing.T) {
	clock := &fakeClock{now: testNow}
	store := NewMemoryStore(MemoryOptions{Now: clock.Now})
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "s", record("reporte", catalog.VentasBasico)))
	clock.Advance(30 * 24 * time.Hour)

	c, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.True(t, c.Primed())
}

func TestMemoryStore_ExpiresIdleSessionsOnAccess(t *testing.T) {
	clock := &fakeClock{now: testNow}
	store := NewMemoryStore(MemoryOptions{TTL: time.Minute, JanitorInterval: time.Hour, Now: clock.Now})
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "s", record("reporte", catalog.VentasBasico)))

	clock.Advance(30 * time.Second)
	c, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.True(t, c.Primed())

	clock.Advance(2 * time.Minute)
	c, err = store.Get(ctx, "s")
	require.NoError(t, err)
	assert.False(t, c.Primed())
}

func TestMemoryStore_JanitorEvicts(t *testing.T) {
	clock := &fakeClock{now: testNow}
	store := NewMemoryStore(MemoryOptions{TTL: time.Minute, JanitorInterval: time.Hour, Now: clock.Now})
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, "old", record("reporte", catalog.VentasBasico)))
	clock.Advance(2 * time.Minute)
	require.NoError(t, store.Update(ctx, "new", record("reporte", catalog.VentasBasico)))

	store.evictExpired()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore(MemoryOptions{})
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Update(ctx, "s", func(c *Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := NewMemoryStore(MemoryOptions{TTL: time.Minute, JanitorInterval: time.Millisecond})
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

// ==========================
// RedisStore Tests
// ==========================

func TestRedisStore_Contract(t *testing.T) {
	store, _, _ := newMiniredisStore(t)
	storeContract(t, store)
}

func TestRedisStore_KeyAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, RedisOptions{KeyPrefix: "ctx:", TTL: 10 * time.Minute})
	require.NoError(t, store.Update(context.Background(), "abc", record("reporte", catalog.VentasBasico)))

	assert.True(t, mr.Exists("ctx:abc"))
	assert.Equal(t, 10*time.Minute, mr.TTL("ctx:abc"))

	mr.FastForward(11 * time.Minute)
	assert.False(t, mr.Exists("ctx:abc"))
}

func TestRedisStore_GetDoesNotCreateKeys(t *testing.T) {
	store, mr, _ := newMiniredisStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		c, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, c.SessionID)
		assert.False(t, c.Primed())
	}

	assert.Empty(t, mr.Keys())
}

func TestRedisStore_GetUsesPlainRead(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, RedisOptions{Now: func() time.Time { return testNow }})

	mock.ExpectGet("report-context:s").RedisNil()

	c, err := store.Get(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, "s", c.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_GetBackendError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, RedisOptions{})

	mock.ExpectGet("report-context:s").SetErr(errors.New("connection reset"))

	_, err := store.Get(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeContextStoreFailed, apperrors.CodeOf(err))
}

func TestRedisStore_ClearAllKeepsForeignKeys(t *testing.T) {
	store, mr, _ := newMiniredisStore(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, store.Update(ctx, fmt.Sprintf("s-%d", i), record("reporte", catalog.VentasBasico)))
	}
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, store.ClearAll(ctx))

	assert.Len(t, mr.Keys(), 1)
	assert.True(t, mr.Exists("other:key"))
}

func TestRedisStore_Conflict(t *testing.T) {
	store, _, client := newMiniredisStore(t)
	ctx := context.Background()

	attempts := 0
	err := store.Update(ctx, "hot", func(c *Context) error {
		attempts++
		return client.Set(ctx, store.key("hot"), fmt.Sprintf(`{"session_id":"hot","n":%d}`, attempts), 0).Err()
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeContextConflict, apperrors.CodeOf(err))
	assert.Equal(t, store.maxRetries, attempts)
}

func TestRedisStore_BackendDown(t *testing.T) {
	store, mr, _ := newMiniredisStore(t)
	mr.Close()

	err := store.Update(context.Background(), "s", record("reporte", catalog.VentasBasico))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeContextStoreFailed, apperrors.CodeOf(err))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr, _ := newMiniredisStore(t)
	require.NoError(t, mr.Set(store.key("s"), "not json"))

	_, err := store.Get(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeContextStoreFailed, apperrors.CodeOf(err))
}

func TestRedisStore_ClearErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, RedisOptions{})

	mock.ExpectDel("report-context:s").SetErr(errors.New("connection reset"))

	err := store.Clear(context.Background(), "s")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeContextStoreFailed, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_ClearAllScanError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, RedisOptions{})

	mock.ExpectScan(0, "report-context:*", clearAllBatchSize).SetErr(errors.New("connection reset"))

	err := store.ClearAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeContextStoreFailed, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// NewStore Tests
// ==========================

func TestNewStore(t *testing.T) {
	log := logger.NewTestLogger(t)

	s, err := NewStore(config.ConversationConfig{Store: "memory"}, nil, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(config.ConversationConfig{Store: "redis"}, nil, log)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s, err = NewStore(config.ConversationConfig{Store: "redis", KeyPrefix: "p:"}, client, log)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	_, err = NewStore(config.ConversationConfig{Store: "etcd"}, nil, log)
	assert.Error(t, err)
}
