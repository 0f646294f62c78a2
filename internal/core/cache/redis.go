package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	RDB *redis.Client
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// Window 以固定窗口计数，供多实例共享的限流使用
func (c *Cache) Window(prefix string, limit int, window time.Duration) *RedisWindow {
	return NewRedisWindow(c.RDB, prefix, limit, window)
}
