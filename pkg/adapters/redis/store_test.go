package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weave/pkg/adapters/redis"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/aretw0/weave/pkg/variables"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunVariableStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.Variable{{Name: "variables.a", Type: domain.TypeText}}))
	require.NoError(t, store.Save(ctx, []domain.Variable{{Name: "variables.b", Type: domain.TypeText}}))

	assert.True(t, mr.Exists("test:variables"))
	assert.False(t, mr.Exists("weave:variables"))
	vars, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, "variables.b", vars[0].Name)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.Variable{{Name: "variables.a"}}))
	mr.FastForward(2 * time.Minute)

	vars, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"variables", "{not json"))

	_, err := redis.NewFromClient(client).Load(context.Background())
	assert.Error(t, err)
}

func TestRedisStore_SharedBetweenRegistries(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, redis.DefaultPrefix)
	a := variables.New(store, variables.WithLocker(locker))
	b := variables.New(redis.NewFromClient(client), variables.WithLocker(locker))
	ctx := context.Background()

	require.NoError(t, a.Create(ctx, domain.Variable{Name: "budget", Type: domain.TypeNumber}))
	assert.Equal(t, domain.TypeNumber, b.ResolveType(ctx, "{{variables.budget}}"))
}
