package variables_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/weave/pkg/adapters/memory"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Load(context.Context) ([]domain.Variable, error) {
	return nil, errors.New("disk on fire")
}

func (brokenStore) Save(context.Context, []domain.Variable) error {
	return errors.New("disk on fire")
}

// saveFailStore loads fine but refuses writes.
type saveFailStore struct{ *memory.Store }

func (saveFailStore) Save(context.Context, []domain.Variable) error {
	return errors.New("read-only")
}

func newRegistry(t *testing.T, seed ...domain.Variable) (*variables.Registry, *memory.Store, *memory.Notifier) {
	t.Helper()
	store := memory.NewStore(seed...)
	n := memory.NewNotifier()
	return variables.New(store, variables.WithNotifier(n)), store, n
}

func TestListAll_Order(t *testing.T) {
	reg, _, _ := newRegistry(t,
		domain.Variable{Name: "variables.zeta", Type: domain.TypeText},
		domain.Variable{Name: "variables.alpha", Type: domain.TypeNumber},
	)
	all := reg.ListAll(context.Background())

	sys := variables.System()
	require.Len(t, all, len(sys)+2)
	assert.Equal(t, "task.title", all[0].Name)
	assert.Equal(t, "trigger.timestamp", all[len(sys)-1].Name)
	assert.Equal(t, "variables.zeta", all[len(sys)].Name, "custom variables keep creation order")
	assert.Equal(t, "variables.alpha", all[len(sys)+1].Name)
}

func TestResolveType(t *testing.T) {
	reg, _, _ := newRegistry(t, domain.Variable{Name: "variables.approval_threshold", Type: domain.TypeNumber})
	ctx := context.Background()

	tests := []struct {
		ref  string
		want domain.VarType
		ok   bool
	}{
		{"{{task.story_points}}", domain.TypeNumber, true},
		{"{{ task.due_date }} and {{task.title}}", domain.TypeDate, true},
		{"task.status", domain.TypeStatus, true},
		{"{{variables.approval_threshold}}", domain.TypeNumber, true},
		{"{{nope.nothing}}", domain.TypeText, false},
		{"just words", domain.TypeText, false},
		{"", domain.TypeText, false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := reg.Resolve(ctx, tt.ref)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, reg.ResolveType(ctx, tt.ref))
		})
	}
}

func TestCompatibleWith(t *testing.T) {
	reg, _, _ := newRegistry(t, domain.Variable{Name: "variables.capacity", Type: domain.TypeNumber})
	got := reg.CompatibleWith(context.Background(), "{{task.story_points}}")

	var names []string
	for _, v := range got {
		assert.Equal(t, domain.TypeNumber, v.Type)
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"task.story_points", "variables.capacity"}, names)
}

func TestCreate_DuplicateLeavesStoreUnchanged(t *testing.T) {
	existing := domain.Variable{Name: "variables.approval_threshold", Description: "Approval limit", Type: domain.TypeNumber, Value: "500"}
	reg, store, n := newRegistry(t, existing)
	ctx := context.Background()

	err := reg.Create(ctx, domain.Variable{Name: "approval_threshold", Type: domain.TypeNumber, Value: "900"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	var verr *domain.VariableError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "create", verr.Op)
	assert.Equal(t, "variables.approval_threshold", verr.Name)

	stored, _ := store.Load(ctx)
	assert.Equal(t, []domain.Variable{existing}, stored)

	last, _ := n.Last()
	assert.Equal(t, domain.LevelError, last.Level)
}

func TestCreate_Defaults(t *testing.T) {
	reg, store, n := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, domain.Variable{Name: "region", Value: "emea"}))

	stored, _ := store.Load(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.Variable{
		Name:        "variables.region",
		Description: "Custom variable: region",
		Type:        domain.TypeText,
		Value:       "emea",
	}, stored[0])

	last, _ := n.Last()
	assert.Equal(t, domain.Notification{Level: domain.LevelSuccess, Title: "Variable created successfully"}, last)

	// immediately visible
	typ, ok := reg.Resolve(ctx, "{{variables.region}}")
	assert.True(t, ok)
	assert.Equal(t, domain.TypeText, typ)
}

func TestCreate_InvalidName(t *testing.T) {
	reg, store, _ := newRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"", "has space", "dash-ed", "variables.", "dotted.path"} {
		err := reg.Create(ctx, domain.Variable{Name: name})
		assert.ErrorIs(t, err, domain.ErrInvalidName, "name %q", name)
	}
	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
}

func TestCreate_UnknownType(t *testing.T) {
	reg, _, _ := newRegistry(t)
	err := reg.Create(context.Background(), domain.Variable{Name: "x", Type: "colour"})
	assert.ErrorIs(t, err, domain.ErrUnknownType)
}

func TestUpdate(t *testing.T) {
	reg, store, _ := newRegistry(t,
		domain.Variable{Name: "variables.a", Description: "A", Type: domain.TypeText, Value: "1"},
		domain.Variable{Name: "variables.b", Description: "B", Type: domain.TypeText, Value: "2"},
	)
	ctx := context.Background()

	require.NoError(t, reg.Update(ctx, "variables.a", domain.Variable{Name: "a", Description: "A2", Type: domain.TypeNumber, Value: "10"}))
	stored, _ := store.Load(ctx)
	assert.Equal(t, domain.Variable{Name: "variables.a", Description: "A2", Type: domain.TypeNumber, Value: "10"}, stored[0])

	err := reg.Update(ctx, "missing", domain.Variable{Name: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = reg.Update(ctx, "a", domain.Variable{Name: "b"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName, "renaming onto an existing name")

	require.NoError(t, reg.Update(ctx, "a", domain.Variable{Name: "c", Type: domain.TypeNumber}))
	_, ok := reg.Lookup(ctx, "variables.c")
	assert.True(t, ok)
	_, ok = reg.Lookup(ctx, "variables.a")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	reg, store, n := newRegistry(t, domain.Variable{Name: "variables.a", Type: domain.TypeText})
	ctx := context.Background()

	require.NoError(t, reg.Delete(ctx, "a"))
	stored, _ := store.Load(ctx)
	assert.Empty(t, stored)
	last, _ := n.Last()
	assert.Equal(t, "Variable deleted successfully", last.Title)

	assert.ErrorIs(t, reg.Delete(ctx, "variables.a"), domain.ErrNotFound)
}

func TestLoadFailure_DegradesToEmpty(t *testing.T) {
	n := memory.NewNotifier()
	reg := variables.New(brokenStore{}, variables.WithNotifier(n))
	ctx := context.Background()

	all := reg.ListAll(ctx)
	assert.Len(t, all, len(variables.System()))

	last, ok := n.Last()
	require.True(t, ok)
	assert.Equal(t, domain.LevelError, last.Level)

	err := reg.Create(ctx, domain.Variable{Name: "x"})
	require.Error(t, err)
	var verr *domain.VariableError
	assert.ErrorAs(t, err, &verr)
}

func TestSaveFailure_Surfaced(t *testing.T) {
	n := memory.NewNotifier()
	reg := variables.New(saveFailStore{memory.NewStore()}, variables.WithNotifier(n))

	err := reg.Create(context.Background(), domain.Variable{Name: "x"})
	require.Error(t, err)
	last, _ := n.Last()
	assert.Equal(t, "Error saving variable", last.Title)
}

func TestHooks(t *testing.T) {
	var events []domain.VariableEvent
	store := memory.NewStore()
	reg := variables.New(store, variables.WithLifecycleHooks(domain.LifecycleHooks{
		OnVariable: func(_ context.Context, e *domain.VariableEvent) { events = append(events, *e) },
	}))
	ctx := context.Background()

	_ = reg.Create(ctx, domain.Variable{Name: "x"})
	_ = reg.Create(ctx, domain.Variable{Name: "x"})

	require.Len(t, events, 2)
	assert.NoError(t, events[0].Err)
	assert.ErrorIs(t, events[1].Err, domain.ErrDuplicateName)
}

func TestSearchAndCategories(t *testing.T) {
	reg, _, _ := newRegistry(t, domain.Variable{Name: "variables.team_capacity", Description: "Current team capacity", Type: domain.TypeNumber})
	ctx := context.Background()

	var names []string
	for _, v := range reg.Search(ctx, "TEAM") {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"project.team", "variables.team_capacity"}, names)

	users := reg.ListByCategory(ctx, variables.CategoryUser)
	require.Len(t, users, 6)
	assert.Equal(t, "trigger.user.name", users[3].Name)

	trig := reg.ListByCategory(ctx, variables.CategoryTrigger)
	require.Len(t, trig, 1)
	assert.Equal(t, "trigger.timestamp", trig[0].Name)

	assert.Len(t, reg.ListByCategory(ctx, variables.CategoryCustom), 1)
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, variables.CategoryUser, variables.CategoryOf("trigger.user.email"))
	assert.Equal(t, variables.CategoryTrigger, variables.CategoryOf("trigger.timestamp"))
	assert.Equal(t, variables.CategoryCustom, variables.CategoryOf("variables.x"))
	assert.Equal(t, variables.CategoryOther, variables.CategoryOf("weird"))
}

// countingLocker records lock cycles and can be made to refuse.
type countingLocker struct {
	locks, unlocks int
	err            error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locks++
	return func(context.Context) error {
		l.unlocks++
		return nil
	}, nil
}

func TestLocker_WrapsMutations(t *testing.T) {
	store := memory.NewStore()
	locker := &countingLocker{}
	reg := variables.New(store, variables.WithLocker(locker))
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, domain.Variable{Name: "budget"}))
	require.NoError(t, reg.Update(ctx, "budget", domain.Variable{Name: "budget", Type: domain.TypeNumber}))
	require.NoError(t, reg.Delete(ctx, "budget"))
	reg.ListAll(ctx)

	assert.Equal(t, 3, locker.locks, "reads do not lock")
	assert.Equal(t, 3, locker.unlocks)
}

func TestLocker_FailureAborts(t *testing.T) {
	store := memory.NewStore()
	reg := variables.New(store, variables.WithLocker(&countingLocker{err: errors.New("contended")}))

	err := reg.Create(context.Background(), domain.Variable{Name: "budget"})
	require.Error(t, err)
	vars, _ := store.Load(context.Background())
	assert.Empty(t, vars)
}
