package dsl

import (
	"testing"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New()

	b.Add("start").
		Trigger(domain.TriggerDeadlineApproaching).
		Param("days_before", "3").
		Go("check")

	b.Add("check").
		Condition(domain.ModeVariableCompare, "{{task.story_points}}", domain.OpGreaterThan, "5").
		Branch(domain.HandleTrue, "mail")

	b.Add("mail").
		Action(domain.ActionSendEmail).
		Param("to", "{{project.owner}}").
		Param("subject", "Big task due")

	doc, err := b.Build()
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, "start", doc.Nodes[0].ID, "declaration order is kept")
	assert.Equal(t, "Deadline in 3 days", doc.Nodes[0].Data.Label)
	assert.Equal(t, domain.Position{X: 250, Y: 150}, doc.Nodes[1].Position)

	require.Len(t, doc.Edges, 2)
	assert.Equal(t, "estart-check", doc.Edges[0].ID)
	assert.Equal(t, domain.ColorNeutral, doc.Edges[0].Style.Stroke)
	assert.Equal(t, domain.ColorTrue, doc.Edges[1].Style.Stroke)
}

func TestBuilder_RejectsIllegalEdges(t *testing.T) {
	b := New()
	b.Add("t").Trigger(domain.TriggerProjectCreated).Go("a").Go("b")
	b.Add("a").Action(domain.ActionAssignTask)
	b.Add("b").Action(domain.ActionAssignTask)

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrConnectionRejected)
}

func TestBuilder_MissingKind(t *testing.T) {
	b := New()
	b.Add("ghost")
	_, err := b.Build()
	assert.Error(t, err)
	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := New()
	first := b.Add("x")
	assert.Same(t, first, b.Add("x"))
}

func TestSample(t *testing.T) {
	doc := Sample()

	require.Len(t, doc.Nodes, 4)
	labels := []string{}
	for _, n := range doc.Nodes {
		labels = append(labels, n.Data.Label)
	}
	assert.Equal(t, []string{"Project Created", "Check Priority", "Notify Team", "Schedule Review"}, labels)

	require.Len(t, doc.Edges, 3)
	assert.Equal(t, domain.HandleTrue, doc.Edges[1].SourceHandle)
	assert.Equal(t, "3", doc.Edges[1].Target)
	assert.Equal(t, domain.ColorFalse, doc.Edges[2].Style.Stroke)
}
