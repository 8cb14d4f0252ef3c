package forms

import (
	"fmt"
	"slices"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/schema"
)

// TriggerEvents lists the selectable trigger events.
var TriggerEvents = []domain.TriggerEvent{
	domain.TriggerProjectCreated,
	domain.TriggerTaskAssigned,
	domain.TriggerTaskStatusChanged,
	domain.TriggerDeadlineApproaching,
}

// TriggerFields returns the parameters of a trigger event.
func TriggerFields(event domain.TriggerEvent) []schema.Field {
	switch event {
	case domain.TriggerTaskAssigned:
		return []schema.Field{
			{Name: "assignee", Label: "Assignee", Type: schema.Assignee, OptionsFrom: "assignee", Expressions: true},
		}
	case domain.TriggerTaskStatusChanged:
		return []schema.Field{
			{Name: "status", Label: "Status", Type: schema.Status, Required: true, OptionsFrom: "status", Expressions: true},
		}
	case domain.TriggerDeadlineApproaching:
		return []schema.Field{
			{Name: "days_before", Label: "Days before", Type: schema.Number, Required: true, Expressions: true, Placeholder: "3"},
		}
	default:
		return []schema.Field{}
	}
}

func triggerLabel(c domain.TriggerConfig) string {
	switch c.Event {
	case domain.TriggerProjectCreated:
		return "Project is created"
	case domain.TriggerTaskAssigned:
		if a := c.Params["assignee"]; a != "" {
			return "Task assigned to " + display(a)
		}
		return "Task assigned"
	case domain.TriggerTaskStatusChanged:
		if s := c.Params["status"]; s != "" {
			return "Status -> " + display(s)
		}
		return "Status changed"
	case domain.TriggerDeadlineApproaching:
		if n := c.Params["days_before"]; n != "" {
			return fmt.Sprintf("Deadline in %s days", display(n))
		}
		return "Deadline approaching"
	default:
		return "Trigger"
	}
}

// SwitchTrigger selects a new event, dropping every parameter and error. An
// unknown event fails with domain.ErrUnknownVariant.
func SwitchTrigger(data domain.NodeData, event domain.TriggerEvent) (domain.NodeData, error) {
	if !slices.Contains(TriggerEvents, event) {
		return domain.NodeData{}, fmt.Errorf("%w: trigger event %q", domain.ErrUnknownVariant, event)
	}
	out := data.Clone()
	out.Trigger = &domain.TriggerConfig{Event: event}
	out.Errors = nil
	out.Label = triggerLabel(*out.Trigger)
	return out, nil
}
