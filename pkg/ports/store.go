package ports

import (
	"context"

	"github.com/aretw0/weave/pkg/domain"
)

// VariableStore persists the custom-variable set as one ordered blob.
// There is no optimistic concurrency control: the last Save wins.
type VariableStore interface {
	// Load returns the stored set in creation order.
	// An empty or never-written store yields an empty slice and no error.
	Load(ctx context.Context) ([]domain.Variable, error)

	// Save overwrites the stored set.
	Save(ctx context.Context, vars []domain.Variable) error
}
