package domain

import "context"

// Snapshot is the {nodes, edges} view handed to the host after a mutation.
type Snapshot struct {
	WorkflowID string `json:"workflow_id,omitempty"`
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
}

// Publication is what the host receives when a workflow is published.
type Publication struct {
	WorkflowID string   `json:"workflow_id,omitempty"`
	Nodes      []Node   `json:"nodes"`
	Edges      []Edge   `json:"edges"`
	Variables  []string `json:"variables"`
}

// NotificationLevel categorises a user-facing notification.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
)

// Notification is a short title plus an optional longer description.
type Notification struct {
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
}

// ConnectionEvent describes one connection attempt.
type ConnectionEvent struct {
	WorkflowID string
	Source     string
	Target     string
	Handle     Handle
	// Reason is empty when the connection was accepted.
	Reason RejectReason
}

// DeletionEvent describes one batch deletion attempt.
type DeletionEvent struct {
	WorkflowID   string
	NodesRemoved int
	EdgesRemoved int
	Rejected     bool
}

// VariableEvent describes one custom variable operation.
type VariableEvent struct {
	Op   string
	Name string
	Err  error
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnConnection func(context.Context, *ConnectionEvent)
	OnDeletion   func(context.Context, *DeletionEvent)
	OnVariable   func(context.Context, *VariableEvent)
}
