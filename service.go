package weave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/adapters/memory"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/dsl"
	"github.com/aretw0/weave/pkg/observability"
	"github.com/aretw0/weave/pkg/options"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/variables"
	"github.com/aretw0/weave/pkg/workflow"
	"github.com/google/uuid"
)

var (
	// ErrEditorNotFound is returned for an unknown editor id.
	ErrEditorNotFound = errors.New("editor not found")
	// ErrUnknownField is returned when a node form has no field of that name.
	ErrUnknownField = errors.New("unknown field")
)

// Service owns the shared variable registry and option cache and the set of
// open editors. It is safe for concurrent use.
type Service struct {
	store    ports.VariableStore
	locker   ports.Locker
	provider ports.OptionsProvider
	notifier ports.Notifier
	host     ports.Host
	hooks    domain.LifecycleHooks
	metrics  *observability.Metrics
	logger   *slog.Logger
	cacheTTL time.Duration
	newID    func() string
	sample   workflow.Document

	registry *variables.Registry
	cache    *options.Cache

	mu      sync.RWMutex
	editors map[string]*Editor
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithStore sets where custom variables are kept (default: in memory).
func WithStore(store ports.VariableStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithLocker serializes variable mutations across processes sharing the store.
func WithLocker(l ports.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithOptionsProvider sets the backend for select-field option lists
// (default: the built-in static lists).
func WithOptionsProvider(p ports.OptionsProvider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithNotifier sets the sink for user-facing notifications of every editor.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithHost sets the collaborator receiving every editor's snapshots and
// publications. Snapshots carry the editor id as WorkflowID.
func WithHost(h ports.Host) Option {
	return func(s *Service) {
		s.host = h
	}
}

// WithLifecycleHooks registers observability hooks in addition to metrics.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) {
		s.hooks = hooks
	}
}

// WithMetrics records into m instead of a private Metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithOptionsTTL expires cached option lists after d.
func WithOptionsTTL(d time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = d
	}
}

// WithIDGenerator replaces the random editor ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// WithSample replaces the document Create starts from when asked for a sample.
func WithSample(doc workflow.Document) Option {
	return func(s *Service) {
		s.sample = doc
	}
}

// NewService builds a Service. Without options it keeps variables in memory
// and serves the built-in option lists.
func NewService(opts ...Option) *Service {
	s := &Service{
		notifier: ports.NopNotifier{},
		host:     ports.NopHost{},
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
		sample:   dsl.Sample(),
		editors:  make(map[string]*Editor),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.provider == nil {
		s.provider = memory.NewOptionsProvider(memory.DefaultAssigneeLatency)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics(observability.WithLogger(s.logger))
	}
	s.hooks = observability.MergeHooks(s.metrics.Hooks(), s.hooks)

	regOpts := []variables.Option{
		variables.WithNotifier(s.notifier),
		variables.WithLogger(s.logger),
		variables.WithLifecycleHooks(s.hooks),
	}
	if s.locker != nil {
		regOpts = append(regOpts, variables.WithLocker(s.locker))
	}
	s.registry = variables.New(s.store, regOpts...)
	s.cache = options.NewCache(s.provider,
		options.WithLogger(s.logger),
		options.WithObserver(s.metrics.FetchObserver()),
		options.WithTTL(s.cacheTTL),
	)
	return s
}

// Registry returns the shared variable registry.
func (s *Service) Registry() *variables.Registry { return s.registry }

// Options returns the shared option cache.
func (s *Service) Options() *options.Cache { return s.cache }

// Metrics returns the metrics the service records into.
func (s *Service) Metrics() *observability.Metrics { return s.metrics }

// Create opens a new editor. With sample it starts from the sample workflow
// (see WithSample), otherwise from an empty graph.
func (s *Service) Create(ctx context.Context, sample bool) (*Editor, error) {
	id := s.newID()

	s.mu.Lock()
	if _, taken := s.editors[id]; taken {
		s.mu.Unlock()
		return nil, fmt.Errorf("editor id %q already in use", id)
	}
	e := s.newEditor(id)
	s.editors[id] = e
	s.mu.Unlock()

	if sample {
		if err := e.wf.Load(ctx, s.sample); err != nil {
			s.mu.Lock()
			delete(s.editors, id)
			s.mu.Unlock()
			return nil, fmt.Errorf("failed to load sample: %w", err)
		}
	}
	s.metrics.EditorOpened()
	s.logger.Info("editor opened", "editor", id, "sample", sample)
	return e, nil
}

func (s *Service) newEditor(id string) *Editor {
	logger := s.logger.With("editor", id)
	return &Editor{
		id:       id,
		registry: s.registry,
		board:    options.NewBoard(s.cache, options.WithLogger(logger)),
		wf: workflow.New(
			workflow.WithID(id),
			workflow.WithHost(s.host),
			workflow.WithNotifier(s.notifier),
			workflow.WithResolver(s.registry),
			workflow.WithLifecycleHooks(s.hooks),
			workflow.WithLogger(s.logger),
		),
	}
}

// Get returns the editor with the given id.
func (s *Service) Get(id string) (*Editor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.editors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEditorNotFound, id)
	}
	return e, nil
}

// Delete closes the editor with the given id.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.editors[id]
	delete(s.editors, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrEditorNotFound, id)
	}
	s.metrics.EditorClosed()
	s.logger.Info("editor closed", "editor", id)
	return nil
}

// List returns the ids of the open editors, sorted.
func (s *Service) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.editors))
	for id := range s.editors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RefreshAll re-derives labels and inline errors in every editor, e.g. after
// a custom variable changed type.
func (s *Service) RefreshAll(ctx context.Context) {
	s.mu.RLock()
	editors := make([]*Editor, 0, len(s.editors))
	for _, e := range s.editors {
		editors = append(editors, e)
	}
	s.mu.RUnlock()
	for _, e := range editors {
		e.wf.Refresh(ctx)
	}
}
