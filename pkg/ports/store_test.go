package ports_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// MockStore keeps the set as a serialized blob, the way real adapters do.
type MockStore struct {
	blob []byte
}

func (m *MockStore) Load(ctx context.Context) ([]domain.Variable, error) {
	if len(m.blob) == 0 {
		return []domain.Variable{}, nil
	}
	var vars []domain.Variable
	if err := json.Unmarshal(m.blob, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func (m *MockStore) Save(ctx context.Context, vars []domain.Variable) error {
	if vars == nil {
		vars = []domain.Variable{}
	}
	b, err := json.Marshal(vars)
	if err != nil {
		return err
	}
	m.blob = b
	return nil
}

func TestVariableStore_Contract(t *testing.T) {
	ports.RunVariableStoreContract(t, &MockStore{})
}

func TestNotifierFunc(t *testing.T) {
	var got domain.Notification
	var n ports.Notifier = ports.NotifierFunc(func(x domain.Notification) { got = x })
	n.Notify(domain.Notification{Level: domain.LevelInfo, Title: "hi"})
	if got.Title != "hi" {
		t.Errorf("Title = %q, want hi", got.Title)
	}
}
