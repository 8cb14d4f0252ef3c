// Package file keeps the custom-variable set in a JSON file on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/weave/pkg/domain"
)

// DefaultPath is used when New is given an empty path.
var DefaultPath = filepath.Join(".weave", "variables.json")

// Store implements ports.VariableStore using one JSON file.
type Store struct {
	Path string
}

// New creates a Store writing to path.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path}
}

// Save writes the set atomically: a temp file in the same directory is
// written, fsynced and renamed over the destination.
func (s *Store) Save(ctx context.Context, vars []domain.Variable) error {
	if vars == nil {
		vars = []domain.Variable{}
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure variables directory: %w", err)
	}

	data, err := json.MarshalIndent(vars, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-variables-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename does not replace an existing file on Windows.
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove existing variables file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the set. A missing file is an empty set.
func (s *Store) Load(ctx context.Context) ([]domain.Variable, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Variable{}, nil
		}
		return nil, fmt.Errorf("failed to read variables file: %w", err)
	}

	vars := []domain.Variable{}
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
	}
	return vars, nil
}
