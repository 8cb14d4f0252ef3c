// Package variables maintains the catalog of referenceable values: the fixed
// system variables plus the user-defined custom set kept in a
// ports.VariableStore.
//
// The store is read on every query, so a change made through any Registry
// (or any process sharing the store) is visible to the next call. Reads that
// fail to load the store are reported through the Notifier and treated as an
// empty custom set; mutations abort instead, so a failed load never
// overwrites the stored set.
package variables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/expr"
	"github.com/aretw0/weave/pkg/ports"
)

var segmentRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Registry resolves variable references and manages the custom set.
type Registry struct {
	store    ports.VariableStore
	notifier ports.Notifier
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	locker   ports.Locker

	mu sync.Mutex // serializes read-modify-write cycles within this process
}

const (
	lockKey = "variables"
	lockTTL = 5 * time.Second
)

// Option configures the Registry.
type Option func(*Registry)

// WithNotifier sets the sink for CRUD outcomes and load failures.
func WithNotifier(n ports.Notifier) Option {
	return func(r *Registry) {
		r.notifier = n
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// WithLocker additionally takes locker around every mutation, for stores
// shared by several processes.
func WithLocker(l ports.Locker) Option {
	return func(r *Registry) {
		r.locker = l
	}
}

// New creates a Registry over the given custom-variable store.
func New(store ports.VariableStore, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		notifier: ports.NopNotifier{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// custom loads the stored set, degrading to empty on failure.
func (r *Registry) custom(ctx context.Context) []domain.Variable {
	vars, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Error("failed to load custom variables", "error", err)
		r.notifier.Notify(domain.Notification{
			Level:       domain.LevelError,
			Title:       "Error loading variables",
			Description: err.Error(),
		})
		return nil
	}
	return vars
}

// ListAll returns system variables in category order followed by custom
// variables in creation order.
func (r *Registry) ListAll(ctx context.Context) []domain.Variable {
	return append(System(), r.custom(ctx)...)
}

// Custom returns only the user-defined variables.
func (r *Registry) Custom(ctx context.Context) []domain.Variable {
	return r.custom(ctx)
}

// Lookup finds a variable by its fully-qualified name.
func (r *Registry) Lookup(ctx context.Context, name string) (domain.Variable, bool) {
	for _, v := range systemCatalog {
		if v.Name == name {
			return v, true
		}
	}
	if !strings.HasPrefix(name, domain.CustomVariablePrefix) {
		return domain.Variable{}, false
	}
	for _, v := range r.custom(ctx) {
		if v.Name == name {
			return v, true
		}
	}
	return domain.Variable{}, false
}

// referencePath returns the catalog path a reference points at: the first
// embedded path of an expression, or the trimmed literal itself.
func referencePath(ref string) string {
	if expr.IsExpression(ref) {
		p, _ := expr.FirstReference(ref)
		return p
	}
	return strings.TrimSpace(ref)
}

// Resolve returns the declared type of the variable ref points at, and
// whether such a variable exists.
func (r *Registry) Resolve(ctx context.Context, ref string) (domain.VarType, bool) {
	path := referencePath(ref)
	if path == "" {
		return domain.TypeText, false
	}
	v, ok := r.Lookup(ctx, path)
	if !ok {
		return domain.TypeText, false
	}
	if v.Type == "" {
		return domain.TypeText, true
	}
	return v.Type, true
}

// ResolveType returns the type of the variable ref points at, defaulting to
// text when nothing matches.
func (r *Registry) ResolveType(ctx context.Context, ref string) domain.VarType {
	t, _ := r.Resolve(ctx, ref)
	return t
}

// CompatibleWith returns every catalog entry whose type equals ResolveType(ref).
func (r *Registry) CompatibleWith(ctx context.Context, ref string) []domain.Variable {
	return r.OfType(ctx, r.ResolveType(ctx, ref))
}

// OfType returns every catalog entry of type t.
func (r *Registry) OfType(ctx context.Context, t domain.VarType) []domain.Variable {
	var out []domain.Variable
	for _, v := range r.ListAll(ctx) {
		vt := v.Type
		if vt == "" {
			vt = domain.TypeText
		}
		if vt == t {
			out = append(out, v)
		}
	}
	return out
}

// Search returns every entry whose name or description contains term,
// case-insensitively. An empty term matches everything.
func (r *Registry) Search(ctx context.Context, term string) []domain.Variable {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []domain.Variable
	for _, v := range r.ListAll(ctx) {
		if term == "" ||
			strings.Contains(strings.ToLower(v.Name), term) ||
			strings.Contains(strings.ToLower(v.Description), term) {
			out = append(out, v)
		}
	}
	return out
}

// ListByCategory returns the entries of one category.
func (r *Registry) ListByCategory(ctx context.Context, c Category) []domain.Variable {
	var out []domain.Variable
	for _, v := range r.ListAll(ctx) {
		if CategoryOf(v.Name) == c {
			out = append(out, v)
		}
	}
	return out
}

// QualifiedName turns a bare segment or a full name into "variables.<segment>",
// validating the segment.
func QualifiedName(name string) (string, error) {
	seg := strings.TrimPrefix(strings.TrimSpace(name), domain.CustomVariablePrefix)
	if seg == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrInvalidName)
	}
	if !segmentRegex.MatchString(seg) {
		return "", fmt.Errorf("%w: %q may only contain letters, numbers, and underscores", domain.ErrInvalidName, seg)
	}
	return domain.CustomVariablePrefix + seg, nil
}

// normalize validates v and fills in defaults.
func normalize(v domain.Variable) (domain.Variable, error) {
	name, err := QualifiedName(v.Name)
	if err != nil {
		return v, err
	}
	t, err := domain.ParseVarType(string(v.Type))
	if err != nil {
		return v, err
	}
	v.Name = name
	v.Type = t
	if strings.TrimSpace(v.Description) == "" {
		v.Description = "Custom variable: " + strings.TrimPrefix(name, domain.CustomVariablePrefix)
	}
	return v, nil
}

func indexOf(vars []domain.Variable, name string) int {
	for i, v := range vars {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Create appends a custom variable and persists the set.
func (r *Registry) Create(ctx context.Context, v domain.Variable) error {
	name := v.Name
	err := r.exclusive(ctx, func() error {
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		name = nv.Name
		vars, err := r.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load custom variables: %w", err)
		}
		if indexOf(vars, nv.Name) >= 0 {
			return domain.ErrDuplicateName
		}
		return r.save(ctx, append(vars, nv))
	})
	return r.finish(ctx, "create", name, err)
}

// Update overwrites the custom variable called name with v. The variable may
// be renamed as long as the new name is free.
func (r *Registry) Update(ctx context.Context, name string, v domain.Variable) error {
	err := r.exclusive(ctx, func() error {
		old, err := QualifiedName(name)
		if err != nil {
			return domain.ErrNotFound
		}
		name = old
		nv, err := normalize(v)
		if err != nil {
			return err
		}
		vars, err := r.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load custom variables: %w", err)
		}
		i := indexOf(vars, old)
		if i < 0 {
			return domain.ErrNotFound
		}
		if nv.Name != old && indexOf(vars, nv.Name) >= 0 {
			return domain.ErrDuplicateName
		}
		vars[i] = nv
		return r.save(ctx, vars)
	})
	return r.finish(ctx, "update", name, err)
}

// Delete removes the custom variable called name.
func (r *Registry) Delete(ctx context.Context, name string) error {
	err := r.exclusive(ctx, func() error {
		full, err := QualifiedName(name)
		if err != nil {
			return domain.ErrNotFound
		}
		name = full
		vars, err := r.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load custom variables: %w", err)
		}
		i := indexOf(vars, full)
		if i < 0 {
			return domain.ErrNotFound
		}
		return r.save(ctx, append(vars[:i], vars[i+1:]...))
	})
	return r.finish(ctx, "delete", name, err)
}

// exclusive runs fn holding the process lock and, when configured, the
// distributed lock.
func (r *Registry) exclusive(ctx context.Context, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locker == nil {
		return fn()
	}
	unlock, err := r.locker.Lock(ctx, lockKey, lockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock custom variables: %w", err)
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			r.logger.Warn("failed to release variables lock", "error", err)
		}
	}()
	return fn()
}

func (r *Registry) save(ctx context.Context, vars []domain.Variable) error {
	if err := r.store.Save(ctx, vars); err != nil {
		return fmt.Errorf("failed to save custom variables: %w", err)
	}
	return nil
}

// finish wraps err, notifies the outcome and fires the hook.
func (r *Registry) finish(ctx context.Context, op, name string, err error) error {
	if err != nil {
		err = &domain.VariableError{Op: op, Name: name, Err: err}
		r.logger.Warn("variable operation failed", "op", op, "name", name, "error", err)
		r.notifier.Notify(domain.Notification{
			Level:       domain.LevelError,
			Title:       failureTitle(op, err),
			Description: err.Error(),
		})
	} else {
		r.logger.Debug("variable operation", "op", op, "name", name)
		r.notifier.Notify(domain.Notification{
			Level: domain.LevelSuccess,
			Title: fmt.Sprintf("Variable %sd successfully", op),
		})
	}
	if r.hooks.OnVariable != nil {
		r.hooks.OnVariable(ctx, &domain.VariableEvent{Op: op, Name: name, Err: err})
	}
	return err
}

func failureTitle(op string, err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateName):
		return "A variable with this name already exists"
	case errors.Is(err, domain.ErrInvalidName):
		return "Variable name can only contain letters, numbers, and underscores"
	case errors.Is(err, domain.ErrNotFound):
		return "Variable not found"
	case errors.Is(err, domain.ErrUnknownType):
		return "Unknown variable type"
	case op == "delete":
		return "Error deleting variable"
	default:
		return "Error saving variable"
	}
}
