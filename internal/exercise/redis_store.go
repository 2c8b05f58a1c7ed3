package exercise

import (
	"context"
	"fmt"
	"time"

	"lingocode_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

const (
	redisKeyPrefix = "lingocode:exercise:"

	fieldState     = "state"
	fieldCompleted = "completed"
	fieldPersisted = "persisted"

	// 运行锁的默认过期时间，进程在运行中退出时锁会自动释放
	defaultRunLockTTL = 2 * time.Minute
)

// RedisStore 基于 Redis 的状态存储，多实例部署时共享练习状态。
// 实例状态保存在 hash 中，运行中标记是一个带过期时间的独立键。
type RedisStore struct {
	client     *redis.Client
	ttl        time.Duration
	runLockTTL time.Duration
}

// NewRedisStore ttl 为实例状态的保留时间，0 表示永久保留。
// runLockTTL 必须大于一次运行加上写入完成记录的最长耗时，<= 0 时使用默认值。
func NewRedisStore(client *redis.Client, ttl, runLockTTL time.Duration) *RedisStore {
	if runLockTTL <= 0 {
		runLockTTL = defaultRunLockTTL
	}
	return &RedisStore{client: client, ttl: ttl, runLockTTL: runLockTTL}
}

func stateKey(key Key) string {
	return redisKeyPrefix + key.String()
}

func lockKey(key Key) string {
	return redisKeyPrefix + key.String() + ":running"
}

func (s *RedisStore) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

func (s *RedisStore) Begin(ctx context.Context, key Key) error {
	ok, err := s.client.SetNX(ctx, lockKey(key), 1, s.runLockTTL).Result()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return util.ErrRunInProgress
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, stateKey(key), fieldState, string(StateRunning))
		s.expire(ctx, pipe, stateKey(key))
		return nil
	})
	if err != nil {
		s.client.Del(ctx, lockKey(key))
		return fmt.Errorf("mark running: %w", err)
	}
	return nil
}

func (s *RedisStore) Finish(ctx context.Context, key Key, correct bool) (Outcome, error) {
	var out Outcome
	if correct {
		first, err := s.client.HSetNX(ctx, stateKey(key), fieldCompleted, 1).Result()
		if err != nil {
			return out, fmt.Errorf("set completed: %w", err)
		}
		out.FirstCompletion = first
	}

	snap, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	snap.State = settle(snap.Completed)

	out.Snapshot = snap
	return out, nil
}

// Release 写入结束状态并删除运行锁，写入失败时锁仍然删除
func (s *RedisStore) Release(ctx context.Context, key Key) error {
	defer s.client.Del(ctx, lockKey(key))

	completed, err := s.client.HGet(ctx, stateKey(key), fieldCompleted).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read completed: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, stateKey(key), fieldState, string(settle(completed == "1")))
		s.expire(ctx, pipe, stateKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("settle state: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkPersisted(ctx context.Context, key Key) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, stateKey(key), fieldPersisted, 1)
		s.expire(ctx, pipe, stateKey(key))
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, key Key) (Snapshot, error) {
	values, err := s.client.HGetAll(ctx, stateKey(key)).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read exercise state: %w", err)
	}

	snap := Snapshot{
		State:     State(values[fieldState]),
		Completed: values[fieldCompleted] == "1",
		Persisted: values[fieldPersisted] == "1",
	}
	if snap.State == "" {
		snap.State = StateIdle
	}
	return snap, nil
}
