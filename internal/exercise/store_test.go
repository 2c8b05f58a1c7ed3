package exercise

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lingocode_backend/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour, 0), mr
}

func stores(t *testing.T) map[string]Store {
	redisStore, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
}

func TestStore_Lifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := Key{UserID: 1, ModuleID: 1, LessonID: 1}

			snap, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, Snapshot{State: StateIdle}, snap)

			require.NoError(t, store.Begin(ctx, key))
			snap, _ = store.Get(ctx, key)
			assert.Equal(t, StateRunning, snap.State)

			out, err := store.Finish(ctx, key, false)
			require.NoError(t, err)
			assert.Equal(t, StateFailed, out.State)
			assert.False(t, out.FirstCompletion)
			require.NoError(t, store.Release(ctx, key))
			snap, _ = store.Get(ctx, key)
			assert.Equal(t, StateFailed, snap.State)

			require.NoError(t, store.Begin(ctx, key))
			out, err = store.Finish(ctx, key, true)
			require.NoError(t, err)
			assert.Equal(t, StateSucceeded, out.State)
			assert.True(t, out.Completed)
			assert.True(t, out.FirstCompletion)
			assert.False(t, out.Persisted)
			require.NoError(t, store.MarkPersisted(ctx, key))
			require.NoError(t, store.Release(ctx, key))

			require.NoError(t, store.Begin(ctx, key))
			out, err = store.Finish(ctx, key, true)
			require.NoError(t, err)
			assert.False(t, out.FirstCompletion)
			assert.True(t, out.Persisted)
			require.NoError(t, store.Release(ctx, key))

			// succeeded 之后的错误提交不会回退
			require.NoError(t, store.Begin(ctx, key))
			out, err = store.Finish(ctx, key, false)
			require.NoError(t, err)
			assert.Equal(t, StateSucceeded, out.State)
			assert.True(t, out.Completed)
			require.NoError(t, store.Release(ctx, key))
			snap, _ = store.Get(ctx, key)
			assert.Equal(t, Snapshot{State: StateSucceeded, Completed: true, Persisted: true}, snap)
		})
	}
}

func TestStore_RunningUntilRelease(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := Key{UserID: 2, ModuleID: 1, LessonID: 1}

			require.NoError(t, store.Begin(ctx, key))
			out, err := store.Finish(ctx, key, true)
			require.NoError(t, err)
			assert.Equal(t, StateSucceeded, out.State)
			assert.True(t, out.FirstCompletion)

			// Finish 与 Release 之间仍然拒绝新的运行
			assert.ErrorIs(t, store.Begin(ctx, key), util.ErrRunInProgress)
			snap, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, StateRunning, snap.State)
			assert.True(t, snap.Completed)

			require.NoError(t, store.Release(ctx, key))
			snap, _ = store.Get(ctx, key)
			assert.Equal(t, StateSucceeded, snap.State)
			assert.NoError(t, store.Begin(ctx, key))
		})
	}
}

func TestStore_RejectsConcurrentRun(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := Key{UserID: 7, ModuleID: 2, LessonID: 3}

			require.NoError(t, store.Begin(ctx, key))
			assert.ErrorIs(t, store.Begin(ctx, key), util.ErrRunInProgress)

			// 其他实例不受影响
			require.NoError(t, store.Begin(ctx, Key{UserID: 8, ModuleID: 2, LessonID: 3}))

			_, err := store.Finish(ctx, key, false)
			require.NoError(t, err)
			require.NoError(t, store.Release(ctx, key))
			assert.NoError(t, store.Begin(ctx, key))
		})
	}
}

func TestStore_FirstCompletionOnlyOnceUnderContention(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := Key{UserID: 3, ModuleID: 1, LessonID: 2}

			var wg sync.WaitGroup
			var firsts, accepted int32
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := store.Begin(ctx, key); err != nil {
						return
					}
					atomic.AddInt32(&accepted, 1)
					out, err := store.Finish(ctx, key, true)
					if err == nil && out.FirstCompletion {
						atomic.AddInt32(&firsts, 1)
					}
					_ = store.Release(ctx, key)
				}()
			}
			wg.Wait()

			assert.GreaterOrEqual(t, accepted, int32(1))
			assert.Equal(t, int32(1), firsts)
		})
	}
}

func TestMemoryStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	idle := Key{UserID: 1, ModuleID: 1, LessonID: 1}
	running := Key{UserID: 1, ModuleID: 1, LessonID: 2}
	fresh := Key{UserID: 1, ModuleID: 1, LessonID: 3}

	require.NoError(t, store.Begin(ctx, idle))
	_, _ = store.Finish(ctx, idle, true)
	require.NoError(t, store.Release(ctx, idle))
	require.NoError(t, store.Begin(ctx, running))

	now = now.Add(2 * time.Hour)
	_, _ = store.Get(ctx, fresh)
	require.NoError(t, store.Begin(ctx, fresh))

	assert.Equal(t, 1, store.Prune(time.Hour))
	assert.Equal(t, 2, store.Len())

	snap, _ := store.Get(ctx, idle)
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.Completed)
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	key := Key{UserID: 1, ModuleID: 1, LessonID: 1}

	require.NoError(t, store.Begin(ctx, key))
	_, err := store.Finish(ctx, key, true)
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockKey(key)))
	require.NoError(t, store.Release(ctx, key))
	assert.True(t, mr.Exists(stateKey(key)))
	assert.False(t, mr.Exists(lockKey(key)))

	mr.FastForward(2 * time.Hour)
	snap, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{State: StateIdle}, snap)
}

func TestRedisStore_StaleLockExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	key := Key{UserID: 1, ModuleID: 1, LessonID: 1}

	require.NoError(t, store.Begin(ctx, key))
	assert.ErrorIs(t, store.Begin(ctx, key), util.ErrRunInProgress)

	mr.FastForward(defaultRunLockTTL + time.Second)
	assert.NoError(t, store.Begin(ctx, key))
}

func TestRedisStore_RunLockTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	key := Key{UserID: 1, ModuleID: 1, LessonID: 1}

	store := NewRedisStore(client, time.Hour, 10*time.Minute)
	require.NoError(t, store.Begin(ctx, key))
	assert.Equal(t, 10*time.Minute, mr.TTL(lockKey(key)))

	// 超过默认值仍然持有锁
	mr.FastForward(defaultRunLockTTL + time.Second)
	assert.ErrorIs(t, store.Begin(ctx, key), util.ErrRunInProgress)

	mr.FastForward(10 * time.Minute)
	assert.NoError(t, store.Begin(ctx, key))
}
