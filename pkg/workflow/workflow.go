// Package workflow holds the authoritative state of one workflow graph: its
// nodes, edges and current selection.
//
// Every change goes through a Workflow method, which consults the graph rules
// and node forms, commits all or nothing, then pushes the resulting
// domain.Snapshot to the host. Rejections leave the graph untouched and are
// reported to the notifier as well as returned.
//
// A Workflow is safe for concurrent use. Collaborators, the type resolver
// included, are never called while the internal lock is held.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/graph"
	"github.com/aretw0/weave/pkg/ports"
)

// Workflow is the mutable node/edge collection of one editor.
type Workflow struct {
	id string

	mu       sync.Mutex
	nodes    []domain.Node
	edges    []domain.Edge
	selNodes []string
	selEdges []string
	rev      uint64 // bumped on every committed graph change

	resolver forms.TypeResolver
	host     ports.Host
	notifier ports.Notifier
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	newID    IDGenerator
}

// New creates an empty workflow.
func New(opts ...Option) *Workflow {
	w := &Workflow{
		host:     ports.NopHost{},
		notifier: ports.NopNotifier{},
		logger:   logging.NewNop(),
		newID:    SequentialIDs,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id != "" {
		w.logger = w.logger.With("workflow", w.id)
	}
	return w
}

// ID returns the workflow identifier.
func (w *Workflow) ID() string { return w.id }

// snapshotLocked copies the graph. Caller must hold w.mu.
func (w *Workflow) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		WorkflowID: w.id,
		Nodes:      cloneNodes(w.nodes),
		Edges:      append([]domain.Edge{}, w.edges...),
	}
}

// commitLocked records a graph change and returns the new snapshot. Caller
// must hold w.mu.
func (w *Workflow) commitLocked() domain.Snapshot {
	w.rev++
	return w.snapshotLocked()
}

// Snapshot returns a copy of the current nodes and edges.
func (w *Workflow) Snapshot() domain.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Node returns a copy of the node with the given id.
func (w *Workflow) Node(id string) (domain.Node, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.indexLocked(id); i >= 0 {
		return w.nodes[i].Clone(), true
	}
	return domain.Node{}, false
}

func (w *Workflow) indexLocked(id string) int {
	for i, n := range w.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// ApplyConnection validates c against the graph rules and adds the resulting
// edge. A rejection leaves the graph unchanged.
func (w *Workflow) ApplyConnection(ctx context.Context, c graph.Candidate) (domain.Edge, error) {
	w.mu.Lock()
	edge, err := graph.Connect(w.nodes, w.edges, c)
	var snap domain.Snapshot
	if err == nil {
		w.edges = append(w.edges, edge)
		snap = w.commitLocked()
	}
	w.mu.Unlock()

	event := &domain.ConnectionEvent{WorkflowID: w.id, Source: c.Source, Target: c.Target, Handle: c.Handle}
	if err != nil {
		var rej *domain.ConnectionRejectedError
		if errors.As(err, &rej) {
			event.Reason = rej.Reason
			w.notifier.Notify(domain.Notification{
				Level:       domain.LevelError,
				Title:       rej.Title(),
				Description: rejectHint(rej.Reason),
			})
		}
		w.logger.Debug("connection rejected", "source", c.Source, "target", c.Target, "handle", c.Handle, "error", err)
	} else {
		w.logger.Debug("connection added", "edge", edge.ID)
		w.host.OnChange(snap)
	}
	if w.hooks.OnConnection != nil {
		w.hooks.OnConnection(ctx, event)
	}
	return edge, err
}

func rejectHint(r domain.RejectReason) string {
	switch r {
	case domain.ReasonTargetHasIncoming, domain.ReasonSourceHasOutgoing, domain.ReasonHandleInUse:
		return "Remove the existing connection first."
	}
	return ""
}

// AddNode appends a node of kind with a fresh id, a default position below
// the existing nodes and the kind's default configuration.
func (w *Workflow) AddNode(ctx context.Context, kind domain.NodeKind) (domain.Node, error) {
	if _, err := domain.ParseNodeKind(string(kind)); err != nil {
		return domain.Node{}, err
	}

	w.mu.Lock()
	n := domain.Node{
		ID:       w.newID(w.nodes),
		Kind:     kind,
		Position: domain.Position{X: 250, Y: float64(len(w.nodes))*100 + 50},
		Data:     forms.Default(kind),
	}
	w.nodes = append(w.nodes, n)
	snap := w.commitLocked()
	w.mu.Unlock()

	w.logger.Debug("node added", "node", n.ID, "kind", kind)
	w.host.OnChange(snap)
	return n.Clone(), nil
}

// UpdateNodeData replaces the data of node id wholesale, re-deriving its label
// and inline errors. Variants not matching the node kind and parameters that
// are not inputs of the current event or action type are dropped. Unknown ids
// are ignored and reported as false.
func (w *Workflow) UpdateNodeData(ctx context.Context, id string, data domain.NodeData) (domain.Node, bool) {
	w.mu.Lock()
	i := w.indexLocked(id)
	if i < 0 {
		w.mu.Unlock()
		w.logger.Debug("update of unknown node ignored", "node", id)
		return domain.Node{}, false
	}
	n := w.nodes[i].Clone()
	w.mu.Unlock()

	n.Data = forms.Prune(n.Kind, onlyKind(n.Kind, data))
	n = forms.Annotate(ctx, w.resolver, n)

	w.mu.Lock()
	if i = w.indexLocked(id); i < 0 {
		w.mu.Unlock()
		w.logger.Debug("node removed during update", "node", id)
		return domain.Node{}, false
	}
	w.nodes[i].Data = n.Data
	n = w.nodes[i].Clone()
	snap := w.commitLocked()
	w.mu.Unlock()

	w.host.OnChange(snap)
	return n, true
}

// MoveNode sets the canvas position of node id. Unknown ids are ignored.
func (w *Workflow) MoveNode(ctx context.Context, id string, pos domain.Position) bool {
	w.mu.Lock()
	i := w.indexLocked(id)
	if i < 0 {
		w.mu.Unlock()
		return false
	}
	w.nodes[i].Position = pos
	snap := w.commitLocked()
	w.mu.Unlock()

	w.host.OnChange(snap)
	return true
}

// SetSelection replaces the selection. Ids that do not exist are dropped.
// Selection is not part of the snapshot, so the host is not notified.
func (w *Workflow) SetSelection(nodeIDs, edgeIDs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	nodes := make(map[string]bool, len(w.nodes))
	for _, n := range w.nodes {
		nodes[n.ID] = true
	}
	edges := make(map[string]bool, len(w.edges))
	for _, e := range w.edges {
		edges[e.ID] = true
	}
	w.selNodes = keepKnown(nodeIDs, nodes)
	w.selEdges = keepKnown(edgeIDs, edges)
}

// Selection returns the selected node and edge ids.
func (w *Workflow) Selection() (nodeIDs, edgeIDs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.selNodes...), append([]string{}, w.selEdges...)
}

// DeleteSelection removes the selected nodes, the selected edges and every
// edge touching a removed node. The batch is rejected as a whole when it would
// remove the last Trigger. An empty selection is a no-op.
func (w *Workflow) DeleteSelection(ctx context.Context) (graph.DeletionPlan, error) {
	w.mu.Lock()
	plan, err := graph.PlanDeletion(w.nodes, w.edges, w.selNodes, w.selEdges)
	var snap domain.Snapshot
	changed := err == nil && !plan.Empty()
	if changed {
		w.nodes, w.edges = graph.Apply(w.nodes, w.edges, plan)
		w.selNodes, w.selEdges = nil, nil
		snap = w.commitLocked()
	}
	w.mu.Unlock()

	event := &domain.DeletionEvent{WorkflowID: w.id}
	switch {
	case err != nil:
		event.Rejected = true
		w.notifier.Notify(domain.Notification{
			Level:       domain.LevelError,
			Title:       "Trigger nodes cannot be deleted",
			Description: "Every workflow requires at least one trigger node.",
		})
		w.logger.Debug("deletion rejected", "error", err)
	case changed:
		event.NodesRemoved = len(plan.Nodes)
		event.EdgesRemoved = len(plan.Edges)
		w.notifier.Notify(domain.Notification{Level: domain.LevelSuccess, Title: "Selected elements deleted"})
		w.host.OnChange(snap)
	}
	if w.hooks.OnDeletion != nil && (err != nil || changed) {
		w.hooks.OnDeletion(ctx, event)
	}
	return plan, err
}

// onlyKind keeps the configuration variant matching kind.
func onlyKind(kind domain.NodeKind, data domain.NodeData) domain.NodeData {
	out := data.Clone()
	if kind != domain.KindTrigger {
		out.Trigger = nil
	}
	if kind != domain.KindCondition {
		out.Condition = nil
	}
	if kind != domain.KindAction {
		out.Action = nil
	}
	return out
}

func keepKnown(ids []string, known map[string]bool) []string {
	var out []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if known[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}

func cloneNodes(nodes []domain.Node) []domain.Node {
	out := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
