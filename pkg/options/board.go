package options

import (
	"context"
	"sync"
)

// State is the display state of one select field.
type State struct {
	Options []string `json:"options"`
	Loading bool     `json:"loading"`
}

// Board holds the option state of every field an editor has asked about.
// Fields are keyed by the caller, typically "<nodeID>/<fieldName>".
type Board struct {
	cache *Cache
	settings

	mu     sync.Mutex
	gen    map[string]uint64
	states map[string]State
}

// NewBoard creates a board backed by cache.
func NewBoard(cache *Cache, opts ...Option) *Board {
	return &Board{
		cache:    cache,
		settings: newSettings(opts),
		gen:      make(map[string]uint64),
		states:   make(map[string]State),
	}
}

// Request marks field as loading and fetches the options of fieldType in the
// background. The returned channel is closed once the fetch has finished,
// whether or not its result was applied. A result is dropped when a newer
// Request or a Forget for the same field happened in the meantime.
func (b *Board) Request(ctx context.Context, field, fieldType string) <-chan struct{} {
	b.mu.Lock()
	b.gen[field]++
	gen := b.gen[field]
	prev := b.states[field]
	b.states[field] = State{Options: prev.Options, Loading: true}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		opts := b.cache.Get(ctx, fieldType)

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen[field] != gen {
			b.logger.Debug("stale options result dropped", "field", field, "field_type", fieldType)
			return
		}
		b.states[field] = State{Options: opts}
	}()
	return done
}

// State returns the current state of field. Unknown fields report no
// options and not loading.
func (b *Board) State(field string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.states[field]
	s.Options = append([]string{}, s.Options...)
	return s
}

// Forget discards the state of field. A fetch still in flight for it will not
// recreate it.
func (b *Board) Forget(field string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen[field]++
	delete(b.states, field)
}
