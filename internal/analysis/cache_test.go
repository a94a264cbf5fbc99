package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-assistant-service/internal/chart"
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
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestMemoryCacheExpiresAfterAnHour(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	cache := NewMemoryCache(DefaultTTL, WithClock(clock.Now))

	require.NoError(t, cache.Set(ctx, KindInventory, Report{Kind: KindInventory, Title: "Inventory"}))

	clock.Advance(59 * time.Minute)
	entry, err := cache.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, KindInventory, entry.Kind)

	clock.Advance(2 * time.Minute)
	entry, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)

	// The slot stays cleared even if the clock moves back.
	clock.Advance(-30 * time.Minute)
	entry, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryCacheLastWriteWins(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(0)

	require.NoError(t, cache.Set(ctx, KindInventory, Report{Title: "first"}))
	require.NoError(t, cache.Set(ctx, KindSales, Report{Title: "second"}))

	entry, err := cache.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, KindSales, entry.Kind)
	assert.Equal(t, "second", entry.Report.Title)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kind := KindInventory
			if i%2 == 0 {
				kind = KindSales
			}
			_ = cache.Set(ctx, kind, Report{Kind: kind})
			_, _ = cache.Get(ctx)
		}()
	}
	wg.Wait()

	entry, err := cache.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, entry.Kind, entry.Report.Kind)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := newClock()
	cache := NewRedisCache(client, time.Hour)
	cache.now = clock.Now

	entry, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)

	report := Report{
		Kind:   KindSales,
		Title:  "Sales",
		Charts: []chart.Descriptor{{Type: chart.Line, Title: "Daily Sales", Data: []chart.Point{{Label: "2026-03-01", Value: 120}}}},
	}
	require.NoError(t, cache.Set(ctx, KindSales, report))

	entry, err = cache.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, KindSales, entry.Kind)
	assert.Equal(t, report.Charts, entry.Report.Charts)

	assert.Equal(t, time.Hour, srv.TTL(redisKey))

	clock.Advance(61 * time.Minute)
	entry, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)

	srv.FastForward(61 * time.Minute)
	assert.False(t, srv.Exists(redisKey))
}

// afterGet runs fn once, right after the client's first GET completes.
type afterGet struct {
	once sync.Once
	fn   func()
}

func (h *afterGet) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *afterGet) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if cmd.Name() == "get" {
			h.once.Do(h.fn)
		}
		return err
	}
}

func (h *afterGet) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisCacheExpiredReadKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)

	writerClient := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	readerClient := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = writerClient.Close()
		_ = readerClient.Close()
	})

	writerClock := newClock()
	writer := NewRedisCache(writerClient, time.Hour)
	writer.now = writerClock.Now

	// The reader's clock runs two hours ahead, so it sees the first entry as expired.
	readerClock := newClock()
	readerClock.Advance(2 * time.Hour)
	reader := NewRedisCache(readerClient, time.Hour)
	reader.now = readerClock.Now

	require.NoError(t, writer.Set(ctx, KindInventory, Report{Title: "old"}))

	var setErr error
	readerClient.AddHook(&afterGet{fn: func() {
		setErr = writer.Set(ctx, KindSales, Report{Title: "fresh"})
	}})

	entry, err := reader.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)
	require.NoError(t, setErr)

	entry, err = writer.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, KindSales, entry.Kind)
	assert.Equal(t, "fresh", entry.Report.Title)
}

func TestRedisCacheUndecodableEntryReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, srv.Set(redisKey, "not json"))
	cache := NewRedisCache(client, time.Hour)

	entry, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, cache.Set(ctx, KindSales, Report{Title: "Sales"}))
	entry, err = cache.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Sales", entry.Report.Title)
}
