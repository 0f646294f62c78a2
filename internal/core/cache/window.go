package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter 固定窗口计数：窗口内第 limit+1 次起拒绝
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// 首次 INCR 时设置过期，保证计数与过期原子完成
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

type RedisWindow struct {
	rdb    redis.Scripter
	prefix string
	limit  int
	window time.Duration
}

func NewRedisWindow(rdb redis.Scripter, prefix string, limit int, window time.Duration) *RedisWindow {
	return &RedisWindow{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (w *RedisWindow) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow.Run(ctx, w.rdb, []string{w.prefix + key}, w.window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(w.limit), nil
}

type slot struct {
	count int
	reset time.Time
}

// 键数超过 sweepAbove 才清理过期槽，且两次清理至少间隔 sweepEvery
const (
	sweepAbove = 10000
	sweepEvery = time.Minute
)

// MemoryWindow 单实例兜底实现
type MemoryWindow struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	slots     map[string]*slot
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryWindow(limit int, window time.Duration) *MemoryWindow {
	return &MemoryWindow{limit: limit, window: window, slots: make(map[string]*slot), now: time.Now}
}

func (w *MemoryWindow) Allow(_ context.Context, key string) (bool, error) {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.slots) > sweepAbove && now.Sub(w.lastSweep) >= sweepEvery {
		w.lastSweep = now
		for k, s := range w.slots {
			if now.After(s.reset) {
				delete(w.slots, k)
			}
		}
	}
	s, ok := w.slots[key]
	if !ok || now.After(s.reset) {
		s = &slot{reset: now.Add(w.window)}
		w.slots[key] = s
	}
	s.count++
	return s.count <= w.limit, nil
}
