package memory

import (
	"context"
	"sync"

	"github.com/aretw0/weave/pkg/domain"
)

// Store implements ports.VariableStore in memory.
// Safe for concurrent use.
type Store struct {
	vars []domain.Variable
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store seeded with vars.
func NewStore(vars ...domain.Variable) *Store {
	s := &Store{}
	s.vars = append(s.vars, vars...)
	return s
}

// Save replaces the stored set with a copy of vars.
func (s *Store) Save(ctx context.Context, vars []domain.Variable) error {
	copied := make([]domain.Variable, len(vars))
	copy(copied, vars)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars = copied
	return nil
}

// Load returns a copy of the stored set so callers can't mutate it in place.
func (s *Store) Load(ctx context.Context) ([]domain.Variable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]domain.Variable, len(s.vars))
	copy(ret, s.vars)
	return ret, nil
}
