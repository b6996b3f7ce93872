package service

import (
	"astro_edu_backend/internal/util"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionBudget 会话配速额度：统计一次客户端会话内已消耗的任务完成数。
// 额度只在会话新建时归零，绝不落库。显式注入而非进程内环境状态，
// 完成服务才能被确定性地测试。
type SessionBudget interface {
	// Spent 本会话已消耗的完成数
	Spent(ctx context.Context, userID uint, sessionID string) (int, error)
	// Consume 占用一个完成名额
	Consume(ctx context.Context, userID uint, sessionID string) error
}

// RedisSessionBudget 生产实现：带 TTL 的 Redis 计数器，会话过期自动清理
type RedisSessionBudget struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSessionBudget(client *redis.Client, ttl time.Duration) *RedisSessionBudget {
	return &RedisSessionBudget{Client: client, TTL: ttl}
}

func pacingKey(userID uint, sessionID string) string {
	return fmt.Sprintf("pacing:%d:%s", userID, sessionID)
}

func (b *RedisSessionBudget) Spent(ctx context.Context, userID uint, sessionID string) (int, error) {
	n, err := b.Client.Get(ctx, pacingKey(userID, sessionID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	return n, nil
}

func (b *RedisSessionBudget) Consume(ctx context.Context, userID uint, sessionID string) error {
	key := pacingKey(userID, sessionID)
	n, err := b.Client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrStorageUnavailable, err)
	}
	if n == 1 {
		b.Client.Expire(ctx, key, b.TTL)
	}
	return nil
}

// MemorySessionBudget 单机/测试实现，条目带最后活跃时间以便清理
type MemorySessionBudget struct {
	mu      sync.Mutex
	entries map[string]*budgetEntry
}

type budgetEntry struct {
	count    int
	lastSeen time.Time
}

func NewMemorySessionBudget() *MemorySessionBudget {
	return &MemorySessionBudget{entries: make(map[string]*budgetEntry)}
}

func (b *MemorySessionBudget) Spent(_ context.Context, userID uint, sessionID string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[pacingKey(userID, sessionID)]
	if !ok {
		return 0, nil
	}
	return e.count, nil
}

func (b *MemorySessionBudget) Consume(_ context.Context, userID uint, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := pacingKey(userID, sessionID)
	e, ok := b.entries[key]
	if !ok {
		e = &budgetEntry{}
		b.entries[key] = e
	}
	e.count++
	e.lastSeen = time.Now()
	return nil
}

// Sweep 清理长期不活跃的会话条目
func (b *MemorySessionBudget) Sweep(olderThan time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, e := range b.entries {
		if time.Since(e.lastSeen) > olderThan {
			delete(b.entries, key)
		}
	}
}
