package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/weave/internal/adapters/file"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "nested", "variables.json"))
	ports.RunVariableStoreContract(t, store)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := file.New(filepath.Join(dir, "variables.json"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, []domain.Variable{{Name: "variables.a", Type: domain.TypeText}}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "variables.json", entries[0].Name())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variables.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := file.New(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, file.DefaultPath, file.New("").Path)
}
