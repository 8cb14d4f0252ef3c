package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(weave.NewService())
}

func TestWorkflowTools(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()
	req := mcp.CallToolRequest{}

	created, err := s.handleCreateWorkflow(ctx, req, map[string]interface{}{"sample": true})
	require.NoError(t, err)
	assert.Len(t, created.Snapshot.Nodes, 4)
	id := created.ID

	got, err := s.handleGetWorkflow(ctx, req, map[string]interface{}{"workflow_id": id})
	require.NoError(t, err)
	assert.Equal(t, created.Snapshot.Edges, got.Snapshot.Edges)

	_, err = s.handleGetWorkflow(ctx, req, map[string]interface{}{"workflow_id": "missing"})
	assert.ErrorIs(t, err, weave.ErrEditorNotFound)

	n, err := s.handleAddNode(ctx, req, map[string]interface{}{"workflow_id": id, "kind": "action"})
	require.NoError(t, err)

	_, err = s.handleConnectNodes(ctx, req, map[string]interface{}{"workflow_id": id, "source": "1", "target": "3"})
	require.ErrorIs(t, err, domain.ErrConnectionRejected)
	assert.Contains(t, err.Error(), "Target node already has an incoming connection")

	e, err := s.handleConnectNodes(ctx, req, map[string]interface{}{"workflow_id": id, "source": "3", "target": n.ID})
	require.NoError(t, err)
	assert.Equal(t, "3", e.Source)

	_, err = s.handlePublishWorkflow(ctx, req, map[string]interface{}{"workflow_id": id})
	require.ErrorIs(t, err, domain.ErrInvalidWorkflow)
	assert.Contains(t, err.Error(), n.ID)

	updated, err := s.handleUpdateNode(ctx, req, map[string]interface{}{
		"workflow_id": id,
		"node_id":     n.ID,
		"data":        `{"action":{"actionType":"send_notification","params":{"recipient":"team_members","message":"Done"}}}`,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Data.Errors)

	pub, err := s.handlePublishWorkflow(ctx, req, map[string]interface{}{"workflow_id": id})
	require.NoError(t, err)
	assert.Len(t, pub.Nodes, 5)
}

func TestUpdateNode_BadData(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()
	created, err := s.handleCreateWorkflow(ctx, mcp.CallToolRequest{}, map[string]interface{}{"sample": true})
	require.NoError(t, err)

	_, err = s.handleUpdateNode(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"workflow_id": created.ID, "node_id": "3", "data": "not json",
	})
	assert.Error(t, err)

	_, err = s.handleUpdateNode(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"workflow_id": created.ID, "node_id": "99", "data": "{}",
	})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestVariableTools(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()
	req := mcp.CallToolRequest{}

	v, err := s.handleCreateVariable(ctx, req, map[string]interface{}{"name": "budget", "type": "number"})
	require.NoError(t, err)
	assert.Equal(t, "variables.budget", v.Name)

	_, err = s.handleCreateVariable(ctx, req, map[string]interface{}{"name": "budget"})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	res, err := s.handleResolveType(ctx, req, map[string]interface{}{"ref": "{{variables.budget}}"})
	require.NoError(t, err)
	assert.True(t, res.Resolved)
	assert.Equal(t, domain.TypeNumber, res.Type)
	assert.Contains(t, res.Operators, domain.OpGreaterThan)

	res, err = s.handleResolveType(ctx, req, map[string]interface{}{"ref": "{{nothing.here}}"})
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.Equal(t, domain.TypeText, res.Type)

	list, err := s.handleListVariables(ctx, req, map[string]interface{}{"category": "custom"})
	require.NoError(t, err)
	require.Len(t, list.Variables, 1)
	assert.Equal(t, "variables.budget", list.Variables[0].Name)

	_, err = s.handleListVariables(ctx, req, map[string]interface{}{"category": "bogus"})
	assert.Error(t, err)
}
