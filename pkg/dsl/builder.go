package dsl

import (
	"fmt"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/workflow"
)

// Builder manages the graph construction.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
// Nodes without an explicit position are stacked vertically.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:       id,
			Position: domain.Position{X: 250, Y: float64(len(b.order))*100 + 50},
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles the graph into a document. Nodes without an explicit label
// get the derived one; edges are styled and checked against the connection
// rules in declaration order.
func (b *Builder) Build() (workflow.Document, error) {
	var doc workflow.Document
	for _, id := range b.order {
		nb := b.nodes[id]
		if nb.node.Kind == "" {
			return workflow.Document{}, fmt.Errorf("node %q has no kind", id)
		}
		n := nb.node
		if !nb.labelled {
			n.Data.Label = forms.Label(n.Kind, n.Data)
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	for _, id := range b.order {
		doc.Edges = append(doc.Edges, b.nodes[id].edges...)
	}

	edges, err := workflow.CheckDocument(doc)
	if err != nil {
		return workflow.Document{}, fmt.Errorf("failed to build graph: %w", err)
	}
	doc.Edges = edges
	return doc, nil
}

// MustBuild is like Build but panics on error. Intended for fixtures.
func (b *Builder) MustBuild() workflow.Document {
	doc, err := b.Build()
	if err != nil {
		panic(err)
	}
	return doc
}

// Sample returns the starter workflow: a trigger feeding a priority check
// that notifies the team when true and schedules a review when false.
func Sample() workflow.Document {
	b := New()

	b.Add("1").
		Label("Project Created").
		At(250, 50).
		Trigger(domain.TriggerProjectCreated).
		Go("2")

	b.Add("2").
		Label("Check Priority").
		At(250, 200).
		Condition(domain.ModeFixedField, "task.priority", domain.OpEquals, "High").
		Branch(domain.HandleTrue, "3").
		Branch(domain.HandleFalse, "4")

	b.Add("3").
		Label("Notify Team").
		At(100, 350).
		Action(domain.ActionSendNotification).
		Param("recipient", "team_members").
		Param("message", "High priority project created")

	b.Add("4").
		Label("Schedule Review").
		At(400, 350).
		Action(domain.ActionCreateTask).
		Param("title", "Review project scope").
		Param("assignee", "{{project.owner}}")

	return b.MustBuild()
}
