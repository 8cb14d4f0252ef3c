package domain

import "fmt"

// NodeKind selects the behavior of a node on the canvas.
type NodeKind string

const (
	// KindTrigger is the entry point of a workflow. It only has outgoing edges.
	KindTrigger NodeKind = "trigger"
	// KindCondition branches on a comparison through its true/false handles.
	KindCondition NodeKind = "condition"
	// KindAction performs an effect. One incoming and one outgoing edge.
	KindAction NodeKind = "action"
)

// Kinds lists every node kind in palette order.
var Kinds = []NodeKind{KindTrigger, KindAction, KindCondition}

// ParseNodeKind converts a raw string into a NodeKind.
func ParseNodeKind(s string) (NodeKind, error) {
	switch NodeKind(s) {
	case KindTrigger, KindCondition, KindAction:
		return NodeKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Position is the canvas coordinate of a node.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node represents a single step of the workflow.
// ID is immutable once the node has been created.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Kind     NodeKind `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// NodeData is the configuration variant of a node.
// Exactly one of Trigger, Condition or Action is meaningful, selected by the
// owning node's Kind. The whole value is replaced on every configuration change.
type NodeData struct {
	// Label is the derived human-readable summary of the configuration.
	Label string `json:"label" yaml:"label"`

	Trigger   *TriggerConfig   `json:"trigger,omitempty" yaml:"trigger,omitempty" mapstructure:"trigger"`
	Condition *ConditionConfig `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	Action    *ActionConfig    `json:"action,omitempty" yaml:"action,omitempty" mapstructure:"action"`

	// Errors holds inline validation messages keyed by field name.
	Errors map[string]string `json:"errors,omitempty" yaml:"-" mapstructure:"-"`
}

// Clone returns a deep copy of the data.
func (d NodeData) Clone() NodeData {
	out := NodeData{Label: d.Label}
	if d.Trigger != nil {
		t := *d.Trigger
		t.Params = cloneParams(d.Trigger.Params)
		out.Trigger = &t
	}
	if d.Condition != nil {
		c := *d.Condition
		out.Condition = &c
	}
	if d.Action != nil {
		a := *d.Action
		a.Params = cloneParams(d.Action.Params)
		out.Action = &a
	}
	if len(d.Errors) > 0 {
		out.Errors = make(map[string]string, len(d.Errors))
		for k, v := range d.Errors {
			out.Errors[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Data = n.Data.Clone()
	return n
}

// TriggerEvent is the external event that starts a workflow.
type TriggerEvent string

const (
	TriggerProjectCreated      TriggerEvent = "project_created"
	TriggerTaskAssigned        TriggerEvent = "task_assigned"
	TriggerTaskStatusChanged   TriggerEvent = "task_status_changed"
	TriggerDeadlineApproaching TriggerEvent = "deadline_approaching"
)

// TriggerConfig configures a Trigger node.
type TriggerConfig struct {
	Event  TriggerEvent      `json:"event" yaml:"event" mapstructure:"event"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

// ConditionMode selects how the left operand of a condition is chosen.
type ConditionMode string

const (
	ModeVariableCompare  ConditionMode = "variable_compare"
	ModeFixedField       ConditionMode = "fixed_field"
	ModeCustomExpression ConditionMode = "custom_expression"
)

// Operator is a comparison operator of a Condition node.
type Operator string

const (
	OpEquals              Operator = "equals"
	OpNotEquals           Operator = "not_equals"
	OpContains            Operator = "contains"
	OpStartsWith          Operator = "starts_with"
	OpEndsWith            Operator = "ends_with"
	OpGreaterThan         Operator = "greater_than"
	OpLessThan            Operator = "less_than"
	OpGreaterThanOrEquals Operator = "greater_than_or_equals"
	OpLessThanOrEquals    Operator = "less_than_or_equals"
	OpBefore              Operator = "before"
	OpAfter               Operator = "after"
	OpOn                  Operator = "on"
)

// ConditionConfig configures a Condition node.
type ConditionConfig struct {
	Mode         ConditionMode `json:"mode" yaml:"mode" mapstructure:"mode"`
	LeftOperand  string        `json:"leftOperand" yaml:"left_operand" mapstructure:"leftOperand"`
	Operator     Operator      `json:"operator" yaml:"operator" mapstructure:"operator"`
	RightOperand string        `json:"rightOperand" yaml:"right_operand" mapstructure:"rightOperand"`
}

// ActionType selects the effect performed by an Action node.
type ActionType string

const (
	ActionSendNotification ActionType = "send_notification"
	ActionSendEmail        ActionType = "send_email"
	ActionCreateTask       ActionType = "create_task"
	ActionUpdateStatus     ActionType = "update_status"
	ActionAssignTask       ActionType = "assign_task"
)

// ActionConfig configures an Action node.
type ActionConfig struct {
	Type   ActionType        `json:"actionType" yaml:"action_type" mapstructure:"actionType"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
}

func cloneParams(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
