// Package redis stores the custom-variable set in Redis and provides a
// distributed Locker so several editor processes can share it.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/weave/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "weave:"

// Store implements ports.VariableStore as a single JSON value.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiration on the stored set. Zero means none.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key() string {
	return s.prefix + "variables"
}

// Save overwrites the set.
func (s *Store) Save(ctx context.Context, vars []domain.Variable) error {
	if vars == nil {
		vars = []domain.Variable{}
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}

	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load returns the stored set, or an empty one when the key does not exist.
func (s *Store) Load(ctx context.Context) ([]domain.Variable, error) {
	val, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return []domain.Variable{}, nil
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var vars []domain.Variable
	if err := json.Unmarshal(val, &vars); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
	}
	if vars == nil {
		vars = []domain.Variable{}
	}
	return vars, nil
}

// Client returns the underlying client, e.g. to build a Locker on it.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Prefix returns the key prefix in use.
func (s *Store) Prefix() string {
	return s.prefix
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
