package options

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/ports"
	"golang.org/x/sync/singleflight"
)

// FetchObserver is told about every provider call the Cache makes.
type FetchObserver func(fieldType string, elapsed time.Duration, err error)

// Option configures a Cache or a Board.
type Option func(*settings)

type settings struct {
	logger  *slog.Logger
	observe FetchObserver
	ttl     time.Duration
	now     func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithObserver registers a callback invoked after each provider call.
func WithObserver(fn FetchObserver) Option {
	return func(s *settings) {
		s.observe = fn
	}
}

// WithTTL expires cached lists after d. Zero keeps them until Invalidate.
func WithTTL(d time.Duration) Option {
	return func(s *settings) {
		s.ttl = d
	}
}

type entry struct {
	options []string
	at      time.Time
}

// Cache memoises option lists per field type.
type Cache struct {
	provider ports.OptionsProvider
	settings

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCache wraps provider.
func NewCache(provider ports.OptionsProvider, opts ...Option) *Cache {
	return &Cache{
		provider: provider,
		settings: newSettings(opts),
		entries:  make(map[string]entry),
	}
}

// Get returns the options for fieldType, calling the provider only when the
// list is not cached. Concurrent misses share one call. Failed or empty
// fetches are not cached.
func (c *Cache) Get(ctx context.Context, fieldType string) []string {
	if opts, ok := c.cached(fieldType); ok {
		return opts
	}

	v, _, _ := c.group.Do(fieldType, func() (any, error) {
		if opts, ok := c.cached(fieldType); ok {
			return opts, nil
		}
		start := c.now()
		opts, err := c.provider.FetchOptions(ctx, fieldType)
		if c.observe != nil {
			c.observe(fieldType, c.now().Sub(start), err)
		}
		if err != nil {
			c.logger.Warn("failed to fetch options", "field_type", fieldType, "err", err)
			return []string{}, nil
		}
		if len(opts) == 0 {
			return []string{}, nil
		}
		opts = append([]string(nil), opts...)
		c.mu.Lock()
		c.entries[fieldType] = entry{options: opts, at: c.now()}
		c.mu.Unlock()
		return opts, nil
	})
	return append([]string{}, v.([]string)...)
}

func (c *Cache) cached(fieldType string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[fieldType]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.at) > c.ttl {
		return nil, false
	}
	return append([]string{}, e.options...), true
}

// Invalidate drops the cached lists of the given field types, or every list
// when none is given.
func (c *Cache) Invalidate(fieldTypes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(fieldTypes) == 0 {
		c.entries = make(map[string]entry)
		return
	}
	for _, ft := range fieldTypes {
		delete(c.entries, ft)
	}
}
