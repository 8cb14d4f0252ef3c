package ports

import (
	"context"
	"testing"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunVariableStoreContract runs a suite of tests to verify that a VariableStore
// implementation adheres to the defined interface contract. The store must be
// empty when passed in.
func RunVariableStoreContract(t *testing.T, store VariableStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		vars, err := store.Load(ctx)
		require.NoError(t, err, "Load of an empty store should not fail")
		assert.Empty(t, vars)
	})

	t.Run("Save and Load", func(t *testing.T) {
		want := []domain.Variable{
			{Name: "variables.approval_threshold", Description: "Approval limit", Type: domain.TypeNumber, Value: "500"},
			{Name: "variables.region", Description: "Custom variable: region", Type: domain.TypeText, Value: "emea"},
		}
		require.NoError(t, store.Save(ctx, want), "Save should not return error")

		got, err := store.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, want, got, "order and fields must survive a round trip")
	})

	t.Run("Overwrite", func(t *testing.T) {
		want := []domain.Variable{
			{Name: "variables.region", Description: "Custom variable: region", Type: domain.TypeText, Value: "apac"},
		}
		require.NoError(t, store.Save(ctx, want))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got, "Save replaces the whole set")
	})

	t.Run("Save Empty", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, nil))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
