package dsl

import "github.com/aretw0/weave/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node     domain.Node
	edges    []domain.Edge
	labelled bool
	builder  *Builder
}

// Trigger makes the node a Trigger listening for event.
func (n *NodeBuilder) Trigger(event domain.TriggerEvent) *NodeBuilder {
	n.node.Kind = domain.KindTrigger
	n.node.Data.Trigger = &domain.TriggerConfig{Event: event}
	return n
}

// Condition makes the node a Condition comparing left and right with op.
func (n *NodeBuilder) Condition(mode domain.ConditionMode, left string, op domain.Operator, right string) *NodeBuilder {
	n.node.Kind = domain.KindCondition
	n.node.Data.Condition = &domain.ConditionConfig{
		Mode:         mode,
		LeftOperand:  left,
		Operator:     op,
		RightOperand: right,
	}
	return n
}

// Action makes the node an Action of type t.
func (n *NodeBuilder) Action(t domain.ActionType) *NodeBuilder {
	n.node.Kind = domain.KindAction
	n.node.Data.Action = &domain.ActionConfig{Type: t}
	return n
}

// Param sets a trigger or action parameter. It must follow Trigger or Action.
func (n *NodeBuilder) Param(key, value string) *NodeBuilder {
	switch {
	case n.node.Data.Trigger != nil:
		if n.node.Data.Trigger.Params == nil {
			n.node.Data.Trigger.Params = make(map[string]string)
		}
		n.node.Data.Trigger.Params[key] = value
	case n.node.Data.Action != nil:
		if n.node.Data.Action.Params == nil {
			n.node.Data.Action.Params = make(map[string]string)
		}
		n.node.Data.Action.Params[key] = value
	}
	return n
}

// Label overrides the derived label.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Data.Label = label
	n.labelled = true
	return n
}

// At sets the canvas position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Go connects this node to target.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	return n.connect(domain.HandleNone, target)
}

// Branch connects the true or false handle of this Condition to target.
func (n *NodeBuilder) Branch(handle domain.Handle, target string) *NodeBuilder {
	return n.connect(handle, target)
}

func (n *NodeBuilder) connect(handle domain.Handle, target string) *NodeBuilder {
	n.edges = append(n.edges, domain.Edge{
		ID:           domain.EdgeID(n.node.ID, target, handle),
		Source:       n.node.ID,
		Target:       target,
		SourceHandle: handle,
	})
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
