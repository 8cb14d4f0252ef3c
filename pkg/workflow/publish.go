package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/expr"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/graph"
	"github.com/aretw0/weave/pkg/schema"
)

// ReferencedVariables returns every distinct {{path}} used in any node
// configuration field, sorted.
func (w *Workflow) ReferencedVariables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return referencedVariables(w.nodes)
}

func referencedVariables(nodes []domain.Node) []string {
	var values []string
	for _, n := range nodes {
		for _, v := range forms.Values(n.Kind, n.Data) {
			values = append(values, v)
		}
	}
	refs := expr.Unique(values...)
	sort.Strings(refs)
	if refs == nil {
		refs = []string{}
	}
	return refs
}

// Validate checks that the graph has a Trigger and that every node passes its
// form validation. Node failures are returned as *domain.InvalidWorkflowError.
func (w *Workflow) Validate(ctx context.Context) error {
	snap := w.Snapshot()
	return validateNodes(ctx, w.resolver, snap.Nodes)
}

func validateNodes(ctx context.Context, res forms.TypeResolver, nodes []domain.Node) error {
	if graph.CountKind(nodes, domain.KindTrigger) == 0 {
		return domain.ErrNoTrigger
	}
	invalid := make(map[string]map[string]string)
	for _, n := range nodes {
		if msgs := schema.Messages(forms.Validate(ctx, res, n.Kind, n.Data)); len(msgs) > 0 {
			invalid[n.ID] = msgs
		}
	}
	if len(invalid) > 0 {
		return &domain.InvalidWorkflowError{Nodes: invalid}
	}
	return nil
}

// Publish validates the workflow and hands {nodes, edges, variables} to the
// host. On failure every node's inline errors are refreshed so the editor can
// show them, and nothing is published.
func (w *Workflow) Publish(ctx context.Context) (domain.Publication, error) {
	w.mu.Lock()
	rev := w.rev
	pub := domain.Publication{
		WorkflowID: w.id,
		Nodes:      cloneNodes(w.nodes),
		Edges:      append([]domain.Edge{}, w.edges...),
	}
	w.mu.Unlock()

	if err := validateNodes(ctx, w.resolver, pub.Nodes); err != nil {
		w.logger.Info("publish rejected", "error", err)
		w.showErrors(rev, nodeErrors(ctx, w.resolver, pub.Nodes, err))
		w.notifier.Notify(domain.Notification{
			Level:       domain.LevelError,
			Title:       "Workflow has errors",
			Description: err.Error(),
		})
		return domain.Publication{}, err
	}
	pub.Variables = referencedVariables(pub.Nodes)

	w.logger.Info("workflow published", "nodes", len(pub.Nodes), "edges", len(pub.Edges), "variables", len(pub.Variables))
	w.notifier.Notify(domain.Notification{
		Level:       domain.LevelSuccess,
		Title:       "Workflow published",
		Description: fmt.Sprintf("%d variable(s) referenced", len(pub.Variables)),
	})
	w.host.OnPublish(pub)
	return pub, nil
}

// nodeErrors returns the inline errors of every invalid node.
func nodeErrors(ctx context.Context, res forms.TypeResolver, nodes []domain.Node, err error) map[string]map[string]string {
	var invalid *domain.InvalidWorkflowError
	if errors.As(err, &invalid) {
		return invalid.Nodes
	}
	out := make(map[string]map[string]string)
	for _, n := range nodes {
		if msgs := schema.Messages(forms.Validate(ctx, res, n.Kind, n.Data)); len(msgs) > 0 {
			out[n.ID] = msgs
		}
	}
	return out
}

// showErrors stores errs as the nodes' inline errors, unless the graph changed
// since revision rev.
func (w *Workflow) showErrors(rev uint64, errs map[string]map[string]string) {
	w.mu.Lock()
	if w.rev != rev {
		w.mu.Unlock()
		return
	}
	for i := range w.nodes {
		w.nodes[i].Data.Errors = errs[w.nodes[i].ID]
	}
	snap := w.commitLocked()
	w.mu.Unlock()
	w.host.OnChange(snap)
}
