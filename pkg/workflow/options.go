package workflow

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/ports"
)

// IDGenerator returns a fresh node id not used by nodes.
type IDGenerator func(nodes []domain.Node) string

// Option configures a Workflow.
type Option func(*Workflow)

// WithID sets the workflow identifier carried by snapshots.
func WithID(id string) Option {
	return func(w *Workflow) {
		w.id = id
	}
}

// WithHost sets the collaborator receiving snapshots and publications.
func WithHost(h ports.Host) Option {
	return func(w *Workflow) {
		w.host = h
	}
}

// WithNotifier sets the sink for rejection and success notifications.
func WithNotifier(n ports.Notifier) Option {
	return func(w *Workflow) {
		w.notifier = n
	}
}

// WithResolver sets the variable type resolver used by node forms.
func WithResolver(r forms.TypeResolver) Option {
	return func(w *Workflow) {
		w.resolver = r
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workflow) {
		w.hooks = hooks
	}
}

// WithLogger configures a logger for the Workflow.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithIDGenerator replaces the default node_N id scheme.
func WithIDGenerator(gen IDGenerator) Option {
	return func(w *Workflow) {
		w.newID = gen
	}
}

// WithGraph seeds the workflow with nodes and edges without validation.
// Use Load for graphs of unknown origin.
func WithGraph(nodes []domain.Node, edges []domain.Edge) Option {
	return func(w *Workflow) {
		w.nodes = cloneNodes(nodes)
		w.edges = append([]domain.Edge(nil), edges...)
	}
}

// SequentialIDs yields node_<n> where n starts at len(nodes)+1 and skips ids
// already taken.
func SequentialIDs(nodes []domain.Node) string {
	taken := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		taken[n.ID] = true
	}
	for i := len(nodes) + 1; ; i++ {
		id := fmt.Sprintf("node_%d", i)
		if !taken[id] {
			return id
		}
	}
}
