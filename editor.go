package weave

import (
	"context"
	"fmt"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/options"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/aretw0/weave/pkg/variables"
	"github.com/aretw0/weave/pkg/workflow"
)

// Editor is one open workflow together with the option lists its forms
// are waiting on.
type Editor struct {
	id       string
	wf       *workflow.Workflow
	registry *variables.Registry
	board    *options.Board
}

// ID returns the editor id, which is also the workflow id.
func (e *Editor) ID() string { return e.id }

// Workflow returns the edited workflow.
func (e *Editor) Workflow() *workflow.Workflow { return e.wf }

func (e *Editor) node(id string) (domain.Node, error) {
	n, ok := e.wf.Node(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n, nil
}

// Fields returns the form currently shown for a node.
func (e *Editor) Fields(ctx context.Context, nodeID string) ([]schema.Field, error) {
	n, err := e.node(nodeID)
	if err != nil {
		return nil, err
	}
	return forms.Fields(ctx, e.registry, n.Kind, n.Data), nil
}

// update applies fn to the node's data and stores the result.
func (e *Editor) update(ctx context.Context, nodeID string, fn func(domain.NodeData) domain.NodeData) (domain.Node, error) {
	n, err := e.node(nodeID)
	if err != nil {
		return domain.Node{}, err
	}
	updated, ok := e.wf.UpdateNodeData(ctx, nodeID, fn(n.Data))
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	return updated, nil
}

// SetConditionLeft changes the left operand of a condition node, clearing
// the right operand and operator when they no longer apply.
func (e *Editor) SetConditionLeft(ctx context.Context, nodeID, left string) (domain.Node, error) {
	n, err := e.node(nodeID)
	if err != nil {
		return domain.Node{}, err
	}
	if n.Kind != domain.KindCondition {
		return domain.Node{}, fmt.Errorf("%w: %s is a %s", domain.ErrKindMismatch, nodeID, n.Kind)
	}
	e.board.Forget(fieldKey(nodeID, forms.FieldRight))
	return e.update(ctx, nodeID, func(d domain.NodeData) domain.NodeData {
		return forms.SetLeftOperand(ctx, e.registry, d, left)
	})
}

// SwitchMode changes the comparison mode of a condition node.
func (e *Editor) SwitchMode(ctx context.Context, nodeID string, mode domain.ConditionMode) (domain.Node, error) {
	return e.switchKind(ctx, nodeID, domain.KindCondition, func(d domain.NodeData) (domain.NodeData, error) {
		return forms.SwitchMode(d, mode)
	})
}

// SwitchTrigger changes the event of a trigger node.
func (e *Editor) SwitchTrigger(ctx context.Context, nodeID string, event domain.TriggerEvent) (domain.Node, error) {
	return e.switchKind(ctx, nodeID, domain.KindTrigger, func(d domain.NodeData) (domain.NodeData, error) {
		return forms.SwitchTrigger(d, event)
	})
}

// SwitchAction changes the type of an action node.
func (e *Editor) SwitchAction(ctx context.Context, nodeID string, t domain.ActionType) (domain.Node, error) {
	return e.switchKind(ctx, nodeID, domain.KindAction, func(d domain.NodeData) (domain.NodeData, error) {
		return forms.SwitchAction(d, t)
	})
}

// switchKind applies a form switch that invalidates every field of the node.
func (e *Editor) switchKind(ctx context.Context, nodeID string, kind domain.NodeKind, fn func(domain.NodeData) (domain.NodeData, error)) (domain.Node, error) {
	n, err := e.node(nodeID)
	if err != nil {
		return domain.Node{}, err
	}
	if n.Kind != kind {
		return domain.Node{}, fmt.Errorf("%w: %s is a %s", domain.ErrKindMismatch, nodeID, n.Kind)
	}
	data, err := fn(n.Data)
	if err != nil {
		return domain.Node{}, err
	}
	for _, f := range forms.Fields(ctx, e.registry, n.Kind, n.Data) {
		e.board.Forget(fieldKey(nodeID, f.Name))
	}
	updated, ok := e.wf.UpdateNodeData(ctx, nodeID, data)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
	}
	return updated, nil
}

// RequestOptions starts loading the option list of a node field. The returned
// channel closes once the list is settled or superseded. Fields without an
// option source close immediately.
func (e *Editor) RequestOptions(ctx context.Context, nodeID, field string) (<-chan struct{}, error) {
	fields, err := e.Fields(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.Name != field {
			continue
		}
		source := f.OptionsFrom
		if source == "" {
			var ok bool
			if source, ok = f.Type.OptionsSource(); !ok {
				done := make(chan struct{})
				close(done)
				return done, nil
			}
		}
		// The fetch outlives the request that asked for it.
		return e.board.Request(context.WithoutCancel(ctx), fieldKey(nodeID, field), source), nil
	}
	return nil, fmt.Errorf("%w: field %q on node %s", ErrUnknownField, field, nodeID)
}

// OptionsState reports the option list of a node field as last requested.
func (e *Editor) OptionsState(nodeID, field string) options.State {
	return e.board.State(fieldKey(nodeID, field))
}

func fieldKey(nodeID, field string) string {
	return nodeID + "/" + field
}
