package forms

import (
	"fmt"
	"slices"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/schema"
)

// ActionTypes lists the selectable action types.
var ActionTypes = []domain.ActionType{
	domain.ActionSendNotification,
	domain.ActionSendEmail,
	domain.ActionCreateTask,
	domain.ActionUpdateStatus,
	domain.ActionAssignTask,
}

// Recipients are the audiences of a notification action.
var Recipients = []string{"project_owner", "team_members", "stakeholders"}

var recipientTitles = map[string]string{
	"project_owner": "Project owner",
	"team_members":  "Team members",
	"stakeholders":  "Stakeholders",
}

// ActionFields returns the parameters of an action type.
func ActionFields(t domain.ActionType) []schema.Field {
	switch t {
	case domain.ActionSendNotification:
		return []schema.Field{
			{Name: "recipient", Label: "Recipient", Type: schema.Select, Required: true, Options: Recipients},
			{Name: "message", Label: "Message", Type: schema.TextArea, Required: true, Expressions: true},
		}
	case domain.ActionSendEmail:
		return []schema.Field{
			{Name: "to", Label: "To", Type: schema.Email, Required: true, Expressions: true, Placeholder: "name@example.com"},
			{Name: "subject", Label: "Subject", Type: schema.Text, Required: true, Expressions: true},
			{Name: "body", Label: "Body", Type: schema.TextArea, Expressions: true},
		}
	case domain.ActionCreateTask:
		return []schema.Field{
			{Name: "title", Label: "Title", Type: schema.Text, Required: true, Expressions: true},
			{Name: "assignee", Label: "Assignee", Type: schema.Assignee, OptionsFrom: "assignee", Expressions: true},
			{Name: "story_points", Label: "Story points", Type: schema.Number, OptionsFrom: "story_points", Expressions: true},
		}
	case domain.ActionUpdateStatus:
		return []schema.Field{
			{Name: "status", Label: "Status", Type: schema.Status, Required: true, OptionsFrom: "status", Expressions: true},
		}
	case domain.ActionAssignTask:
		return []schema.Field{
			{Name: "assignee", Label: "Assignee", Type: schema.Assignee, Required: true, OptionsFrom: "assignee", Expressions: true},
		}
	default:
		return []schema.Field{}
	}
}

func actionLabel(c domain.ActionConfig) string {
	p := c.Params
	switch c.Type {
	case domain.ActionSendNotification:
		if t, ok := recipientTitles[p["recipient"]]; ok {
			return "Notify " + t
		}
		return "Send notification"
	case domain.ActionSendEmail:
		if to := p["to"]; to != "" {
			return "Email " + display(to)
		}
		return "Send email"
	case domain.ActionCreateTask:
		if title := p["title"]; title != "" {
			return "Create task: " + display(title)
		}
		return "Create task"
	case domain.ActionUpdateStatus:
		if s := p["status"]; s != "" {
			return "Set status: " + display(s)
		}
		return "Update status"
	case domain.ActionAssignTask:
		if a := p["assignee"]; a != "" {
			return "Assign to " + display(a)
		}
		return "Assign task"
	default:
		return "Action"
	}
}

// SwitchAction selects a new action type, dropping every parameter and error.
// An unknown type fails with domain.ErrUnknownVariant.
func SwitchAction(data domain.NodeData, t domain.ActionType) (domain.NodeData, error) {
	if !slices.Contains(ActionTypes, t) {
		return domain.NodeData{}, fmt.Errorf("%w: action type %q", domain.ErrUnknownVariant, t)
	}
	out := data.Clone()
	out.Action = &domain.ActionConfig{Type: t}
	out.Errors = nil
	out.Label = actionLabel(*out.Action)
	return out, nil
}
