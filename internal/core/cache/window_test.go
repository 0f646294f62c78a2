package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hits(t *testing.T, l Limiter, key string, n int) []bool {
	t.Helper()
	out := make([]bool, 0, n)
	for i := 0; i < n; i++ {
		ok, err := l.Allow(context.Background(), key)
		require.NoError(t, err)
		out = append(out, ok)
	}
	return out
}

func TestRedisWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))

	w := c.Window("login:", 3, time.Minute)
	assert.Equal(t, []bool{true, true, true, false}, hits(t, w, "1.2.3.4", 4))
	assert.Equal(t, []bool{true}, hits(t, w, "5.6.7.8", 1))

	assert.True(t, mr.Exists("login:1.2.3.4"))
	assert.Greater(t, mr.TTL("login:1.2.3.4"), time.Duration(0))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, []bool{true}, hits(t, w, "1.2.3.4", 1))
}

func TestRedisWindowSharedAcrossClients(t *testing.T) {
	mr := miniredis.RunT(t)
	a := New(mr.Addr(), "", 0).Window("login:", 2, time.Minute)
	b := New(mr.Addr(), "", 0).Window("login:", 2, time.Minute)

	assert.Equal(t, []bool{true}, hits(t, a, "ip", 1))
	assert.Equal(t, []bool{true, false}, hits(t, b, "ip", 2))
}

func TestRedisWindowDown(t *testing.T) {
	mr := miniredis.RunT(t)
	w := New(mr.Addr(), "", 0).Window("login:", 2, time.Minute)
	mr.Close()

	_, err := w.Allow(context.Background(), "ip")
	assert.Error(t, err)
}

func TestMemoryWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewMemoryWindow(2, time.Minute)
	w.now = func() time.Time { return now }

	assert.Equal(t, []bool{true, true, false}, hits(t, w, "ip", 3))
	assert.Equal(t, []bool{true}, hits(t, w, "other", 1))

	now = now.Add(61 * time.Second)
	assert.Equal(t, []bool{true}, hits(t, w, "ip", 1))
}

func TestMemoryWindowSweepIsThrottled(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewMemoryWindow(1, 10*time.Second)
	w.now = func() time.Time { return now }

	for i := 0; i <= sweepAbove; i++ {
		_, err := w.Allow(ctx, fmt.Sprintf("ip-%d", i))
		require.NoError(t, err)
	}
	// 第一次超限即清理一次，此时还没有过期槽
	_, err := w.Allow(ctx, "late")
	require.NoError(t, err)
	assert.Len(t, w.slots, sweepAbove+2)
	assert.Equal(t, now, w.lastSweep)

	// 全部过期，但距上次清理不足 sweepEvery，不扫
	now = now.Add(11 * time.Second)
	_, err = w.Allow(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, w.slots, sweepAbove+3)

	now = now.Add(sweepEvery)
	_, err = w.Allow(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, w.slots, 1)
	assert.Equal(t, now, w.lastSweep)
}
