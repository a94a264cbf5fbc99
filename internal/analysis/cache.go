package analysis

import (
	"context"
	"sync"
	"time"
)

const DefaultTTL = time.Hour

// Entry is the single cached slot.
type Entry struct {
	Kind       Kind      `json:"kind"`
	Report     Report    `json:"report"`
	ComputedAt time.Time `json:"computed_at"`
}

// Cache keeps only the most recent analysis. Set always overwrites;
// Get clears and reports absence once the entry is older than the TTL.
type Cache interface {
	Get(ctx context.Context) (*Entry, error)
	Set(ctx context.Context, kind Kind, report Report) error
}

type MemoryCache struct {
	mu    sync.Mutex
	entry *Entry
	ttl   time.Duration
	now   func() time.Time
}

type MemoryOption func(*MemoryCache)

// WithClock swaps the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

func NewMemoryCache(ttl time.Duration, opts ...MemoryOption) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry == nil {
		return nil, nil
	}
	if c.now().Sub(c.entry.ComputedAt) > c.ttl {
		c.entry = nil
		return nil, nil
	}
	e := *c.entry
	return &e, nil
}

func (c *MemoryCache) Set(_ context.Context, kind Kind, report Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &Entry{Kind: kind, Report: report, ComputedAt: c.now()}
	return nil
}
