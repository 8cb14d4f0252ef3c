package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when a node id does not exist in the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrUnknownKind is returned for an unrecognised node kind.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrUnknownHandle is returned for a handle other than "", "true" or "false".
	ErrUnknownHandle = errors.New("unknown handle")
	// ErrUnknownType is returned for an unrecognised variable type.
	ErrUnknownType = errors.New("unknown variable type")
	// ErrUnknownVariant is returned for an action type, trigger event or
	// condition mode outside the selectable values.
	ErrUnknownVariant = errors.New("unknown node configuration")
	// ErrKindMismatch is returned when node data does not carry the variant of its kind.
	ErrKindMismatch = errors.New("node data does not match node kind")
	// ErrNoTrigger is returned when a workflow has no Trigger node.
	ErrNoTrigger = errors.New("workflow has no trigger node")

	// ErrConnectionRejected is the class of every structural connection failure.
	ErrConnectionRejected = errors.New("connection rejected")
	// ErrDeletionRejected is the class of every rejected batch deletion.
	ErrDeletionRejected = errors.New("deletion rejected")

	// ErrDuplicateName is returned when a custom variable name is already taken.
	ErrDuplicateName = errors.New("duplicate variable name")
	// ErrInvalidName is returned when a custom variable name segment is malformed.
	ErrInvalidName = errors.New("invalid variable name")
	// ErrNotFound is returned when a custom variable does not exist.
	ErrNotFound = errors.New("variable not found")
)

// RejectReason identifies which connection rule failed.
type RejectReason string

const (
	ReasonUnknownNode       RejectReason = "unknown_node"
	ReasonSelfLoop          RejectReason = "self_loop"
	ReasonTriggerTarget     RejectReason = "trigger_target"
	ReasonInvalidHandle     RejectReason = "invalid_handle"
	ReasonTargetHasIncoming RejectReason = "target_has_incoming"
	ReasonSourceHasOutgoing RejectReason = "source_has_outgoing"
	ReasonHandleInUse       RejectReason = "handle_in_use"
)

// ConnectionRejectedError reports a connection attempt refused by a structural rule.
type ConnectionRejectedError struct {
	Reason RejectReason
	Source string
	Target string
	Handle Handle
}

func (e *ConnectionRejectedError) Error() string {
	return fmt.Sprintf("connection %s -> %s rejected: %s", e.Source, e.Target, e.Reason)
}

func (e *ConnectionRejectedError) Is(target error) bool { return target == ErrConnectionRejected }

// Title returns a short human-readable headline for the rejection.
func (e *ConnectionRejectedError) Title() string {
	switch e.Reason {
	case ReasonTargetHasIncoming:
		return "Target node already has an incoming connection"
	case ReasonSourceHasOutgoing:
		return "Source node already has an outgoing connection"
	case ReasonHandleInUse:
		if e.Handle == HandleFalse {
			return "False path already connected"
		}
		return "True path already connected"
	case ReasonSelfLoop:
		return "A node cannot connect to itself"
	case ReasonTriggerTarget:
		return "Trigger nodes cannot have incoming connections"
	case ReasonInvalidHandle:
		return "Invalid connection handle"
	default:
		return "Unknown node"
	}
}

// DeletionRejectedError reports a batch deletion refused as a whole.
type DeletionRejectedError struct {
	Reason string
}

func (e *DeletionRejectedError) Error() string {
	return fmt.Sprintf("deletion rejected: %s", e.Reason)
}

func (e *DeletionRejectedError) Is(target error) bool { return target == ErrDeletionRejected }

// VariableError represents a failed custom variable operation.
type VariableError struct {
	// Op is the operation being performed ("create", "update", "delete").
	Op string
	// Name is the fully-qualified variable name.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("variable %s %q: %s", e.Op, e.Name, e.Err)
}

func (e *VariableError) Unwrap() error { return e.Err }

// ErrInvalidWorkflow is the class of publish failures caused by node validation.
var ErrInvalidWorkflow = errors.New("workflow has invalid nodes")

// InvalidWorkflowError lists the inline errors of every invalid node.
type InvalidWorkflowError struct {
	// Nodes maps node id to field name to message.
	Nodes map[string]map[string]string
}

func (e *InvalidWorkflowError) Error() string {
	return fmt.Sprintf("%d invalid node(s)", len(e.Nodes))
}

func (e *InvalidWorkflowError) Is(target error) bool { return target == ErrInvalidWorkflow }
