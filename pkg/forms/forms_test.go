package forms_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/expr"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver resolves bare paths or {{path}} against a fixed table.
type fakeResolver map[string]domain.VarType

func (f fakeResolver) Resolve(_ context.Context, ref string) (domain.VarType, bool) {
	path := strings.TrimSpace(ref)
	if p, ok := expr.FirstReference(ref); ok {
		path = p
	}
	t, ok := f[path]
	if !ok {
		return domain.TypeText, false
	}
	return t, true
}

var catalog = fakeResolver{
	"task.title":         domain.TypeText,
	"task.status":        domain.TypeStatus,
	"task.story_points":  domain.TypeNumber,
	"task.due_date":      domain.TypeDate,
	"current_user.email": domain.TypeEmail,
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", forms.Truncate("short"))
	assert.Equal(t, "exactly12chr", forms.Truncate("exactly12chr"))
	assert.Equal(t, "Please revie...", forms.Truncate("Please review this"))
	assert.Equal(t, "éééééééééééé...", forms.Truncate("éééééééééééééé"))
}

func TestOperatorsFor(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		left string
		want []domain.Operator
	}{
		{"{{task.due_date}}", []domain.Operator{domain.OpBefore, domain.OpAfter, domain.OpOn}},
		{"{{task.story_points}}", []domain.Operator{domain.OpEquals, domain.OpNotEquals, domain.OpGreaterThan, domain.OpLessThan, domain.OpGreaterThanOrEquals, domain.OpLessThanOrEquals}},
		{"{{task.title}}", []domain.Operator{domain.OpEquals, domain.OpNotEquals, domain.OpContains, domain.OpStartsWith, domain.OpEndsWith}},
		{"{{current_user.email}}", []domain.Operator{domain.OpEquals, domain.OpNotEquals, domain.OpContains, domain.OpStartsWith, domain.OpEndsWith}},
		{"task.status", []domain.Operator{domain.OpEquals, domain.OpNotEquals}},
	}
	for _, tt := range tests {
		t.Run(tt.left, func(t *testing.T) {
			assert.Equal(t, tt.want, forms.OperatorsFor(ctx, catalog, tt.left))
		})
	}

	union := forms.OperatorsFor(ctx, catalog, "{{unknown.thing}}")
	assert.Len(t, union, 9)
	assert.Contains(t, union, domain.OpContains)
	assert.Contains(t, union, domain.OpGreaterThanOrEquals)
	assert.NotContains(t, union, domain.OpBefore)

	assert.Len(t, forms.OperatorsFor(ctx, nil, "{{task.title}}"), 9, "no resolver means unresolved")
}

func TestSetLeftOperand_TypeChangeClearsRight(t *testing.T) {
	ctx := context.Background()
	data := domain.NodeData{Condition: &domain.ConditionConfig{
		Mode:         domain.ModeVariableCompare,
		LeftOperand:  "{{task.title}}",
		Operator:     domain.OpEquals,
		RightOperand: "Launch",
	}}

	out := forms.SetLeftOperand(ctx, catalog, data, "{{task.story_points}}")
	assert.Equal(t, "{{task.story_points}}", out.Condition.LeftOperand)
	assert.Empty(t, out.Condition.RightOperand)
	assert.Equal(t, domain.OpEquals, out.Condition.Operator)
	assert.Equal(t, "Launch", data.Condition.RightOperand, "input is not mutated")
}

func TestSetLeftOperand_SameTypeKeepsRight(t *testing.T) {
	ctx := context.Background()
	data := domain.NodeData{Condition: &domain.ConditionConfig{
		Mode:         domain.ModeVariableCompare,
		LeftOperand:  "{{task.title}}",
		Operator:     domain.OpContains,
		RightOperand: "Launch",
	}}
	out := forms.SetLeftOperand(ctx, catalog, data, "{{current_user.email}}")
	assert.Empty(t, out.Condition.RightOperand, "text and email are distinct types")
	assert.Equal(t, domain.OpContains, out.Condition.Operator)

	// email -> email keeps the value
	data = out
	data.Condition.RightOperand = "a@b.co"
	out = forms.SetLeftOperand(ctx, catalog, data, "current_user.email")
	assert.Equal(t, "a@b.co", out.Condition.RightOperand)
}

func TestSetLeftOperand_ResetsInapplicableOperator(t *testing.T) {
	ctx := context.Background()
	data := domain.NodeData{Condition: &domain.ConditionConfig{
		Mode:        domain.ModeVariableCompare,
		LeftOperand: "{{task.title}}",
		Operator:    domain.OpContains,
	}}
	out := forms.SetLeftOperand(ctx, catalog, data, "{{task.due_date}}")
	assert.Equal(t, domain.OpBefore, out.Condition.Operator)
}

func TestSwitchMode_ResetsEverything(t *testing.T) {
	data := domain.NodeData{
		Condition: &domain.ConditionConfig{
			Mode:         domain.ModeVariableCompare,
			LeftOperand:  "{{task.title}}",
			Operator:     domain.OpContains,
			RightOperand: "x",
		},
		Errors: map[string]string{"rightOperand": "required"},
	}
	out, err := forms.SwitchMode(data, domain.ModeFixedField)
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionConfig{Mode: domain.ModeFixedField, Operator: domain.OpEquals}, *out.Condition)
	assert.Nil(t, out.Errors)
	assert.Equal(t, "Condition", out.Label)
}

func TestSwitchAction_DropsParams(t *testing.T) {
	data := domain.NodeData{
		Action: &domain.ActionConfig{Type: domain.ActionSendEmail, Params: map[string]string{"to": "a@b.co", "subject": "Hi"}},
		Errors: map[string]string{"body": "x"},
	}
	out, err := forms.SwitchAction(data, domain.ActionCreateTask)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCreateTask, out.Action.Type)
	assert.Empty(t, out.Action.Params)
	assert.Nil(t, out.Errors)
	assert.Equal(t, "Create task", out.Label)
	assert.Equal(t, "a@b.co", data.Action.Params["to"], "input is not mutated")
}

func TestSwitchTrigger_DropsParams(t *testing.T) {
	data := domain.NodeData{Trigger: &domain.TriggerConfig{Event: domain.TriggerTaskStatusChanged, Params: map[string]string{"status": "Completed"}}}
	out, err := forms.SwitchTrigger(data, domain.TriggerDeadlineApproaching)
	require.NoError(t, err)
	assert.Empty(t, out.Trigger.Params)
	assert.Equal(t, "Deadline approaching", out.Label)
}

func TestSwitch_RejectsUnknownVariants(t *testing.T) {
	data := domain.NodeData{Action: &domain.ActionConfig{Type: domain.ActionSendEmail}}

	_, err := forms.SwitchAction(data, "launch_rocket")
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
	_, err = forms.SwitchTrigger(data, "moon_landed")
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
	_, err = forms.SwitchMode(data, "telepathy")
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
}

func TestCheckVariant(t *testing.T) {
	assert.NoError(t, forms.CheckVariant(forms.Default(domain.KindAction)))
	assert.NoError(t, forms.CheckVariant(domain.NodeData{}))
	assert.ErrorIs(t, forms.CheckVariant(domain.NodeData{Action: &domain.ActionConfig{Type: "launch_rocket"}}), domain.ErrUnknownVariant)
	assert.ErrorIs(t, forms.CheckVariant(domain.NodeData{Trigger: &domain.TriggerConfig{Event: "moon_landed"}}), domain.ErrUnknownVariant)
	assert.ErrorIs(t, forms.CheckVariant(domain.NodeData{Condition: &domain.ConditionConfig{Mode: "telepathy"}}), domain.ErrUnknownVariant)
}

func TestValuesAndPrune_OnlyCurrentFields(t *testing.T) {
	data := domain.NodeData{Action: &domain.ActionConfig{Type: domain.ActionSendEmail, Params: map[string]string{
		"to":        "{{current_user.email}}",
		"subject":   "Hi",
		"message":   "{{task.title",
		"recipient": "{{secret.leak}}",
	}}}

	values := forms.Values(domain.KindAction, data)
	assert.Equal(t, map[string]string{"to": "{{current_user.email}}", "subject": "Hi"}, values)

	pruned := forms.Prune(domain.KindAction, data)
	assert.Equal(t, map[string]string{"to": "{{current_user.email}}", "subject": "Hi"}, pruned.Action.Params)
	assert.Len(t, data.Action.Params, 4, "input is not mutated")

	trig := forms.Prune(domain.KindTrigger, domain.NodeData{Trigger: &domain.TriggerConfig{
		Event: domain.TriggerProjectCreated, Params: map[string]string{"status": "Done"},
	}})
	assert.Nil(t, trig.Trigger.Params)
}

func TestFields_ByMode(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, forms.TriggerFields(domain.TriggerProjectCreated))
	require.Len(t, forms.TriggerFields(domain.TriggerDeadlineApproaching), 1)
	assert.Equal(t, schema.Number, forms.TriggerFields(domain.TriggerDeadlineApproaching)[0].Type)

	names := func(fs []schema.Field) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Equal(t, []string{"recipient", "message"}, names(forms.ActionFields(domain.ActionSendNotification)))
	assert.Equal(t, []string{"to", "subject", "body"}, names(forms.ActionFields(domain.ActionSendEmail)))
	assert.Equal(t, []string{"title", "assignee", "story_points"}, names(forms.ActionFields(domain.ActionCreateTask)))

	fixed := forms.ConditionFields(ctx, catalog, domain.ConditionConfig{Mode: domain.ModeFixedField, LeftOperand: "task.status"})
	require.Len(t, fixed, 3)
	assert.Equal(t, schema.Select, fixed[0].Type)
	assert.Equal(t, forms.FixedFields, fixed[0].Options)
	assert.Equal(t, []string{"equals", "not_equals"}, fixed[1].Options)
	assert.Equal(t, schema.Status, fixed[2].Type)
	assert.Equal(t, "status", fixed[2].OptionsFrom)

	unresolved := forms.ConditionFields(ctx, catalog, domain.ConditionConfig{Mode: domain.ModeVariableCompare})
	assert.Equal(t, schema.Text, unresolved[2].Type)
	assert.Empty(t, unresolved[2].OptionsFrom)
}

func TestLabels(t *testing.T) {
	tests := []struct {
		name string
		kind domain.NodeKind
		data domain.NodeData
		want string
	}{
		{"project created", domain.KindTrigger, domain.NodeData{Trigger: &domain.TriggerConfig{Event: domain.TriggerProjectCreated}}, "Project is created"},
		{"assigned", domain.KindTrigger, domain.NodeData{Trigger: &domain.TriggerConfig{Event: domain.TriggerTaskAssigned, Params: map[string]string{"assignee": "Jane Smith"}}}, "Task assigned to Jane Smith"},
		{"status", domain.KindTrigger, domain.NodeData{Trigger: &domain.TriggerConfig{Event: domain.TriggerTaskStatusChanged, Params: map[string]string{"status": "Completed"}}}, "Status -> Completed"},
		{"deadline", domain.KindTrigger, domain.NodeData{Trigger: &domain.TriggerConfig{Event: domain.TriggerDeadlineApproaching, Params: map[string]string{"days_before": "3"}}}, "Deadline in 3 days"},
		{"condition", domain.KindCondition, domain.NodeData{Condition: &domain.ConditionConfig{LeftOperand: "{{task.story_points}}", Operator: domain.OpGreaterThan, RightOperand: "8"}}, "task.story_p... > 8"},
		{"condition truncated", domain.KindCondition, domain.NodeData{Condition: &domain.ConditionConfig{LeftOperand: "{{task.title}}", Operator: domain.OpContains, RightOperand: "Quarterly planning"}}, "task.title contains Quarterly pl..."},
		{"condition empty", domain.KindCondition, domain.NodeData{Condition: &domain.ConditionConfig{}}, "Condition"},
		{"notify", domain.KindAction, domain.NodeData{Action: &domain.ActionConfig{Type: domain.ActionSendNotification, Params: map[string]string{"recipient": "team_members"}}}, "Notify Team members"},
		{"email expression", domain.KindAction, domain.NodeData{Action: &domain.ActionConfig{Type: domain.ActionSendEmail, Params: map[string]string{"to": "{{current_user.email}}"}}}, "Email current_user..."},
		{"no config keeps label", domain.KindAction, domain.NodeData{Label: "Notify Team"}, "Notify Team"},
		{"no config no label", domain.KindAction, domain.NodeData{}, "Action"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, forms.Label(tt.kind, tt.data))
		})
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing config", func(t *testing.T) {
		err := forms.Validate(ctx, catalog, domain.KindAction, domain.NodeData{Label: "x"})
		msgs := schema.Messages(err)
		assert.Contains(t, msgs, "config")
	})

	t.Run("email action", func(t *testing.T) {
		data := domain.NodeData{Action: &domain.ActionConfig{Type: domain.ActionSendEmail, Params: map[string]string{
			"to":      "not-an-email",
			"subject": "{{task.title}}}}",
		}}}
		errs := schema.ValidationErrors(forms.Validate(ctx, catalog, domain.KindAction, data))
		require.Len(t, errs, 2)
		codes := map[string]schema.Code{}
		for _, e := range errs {
			ve := e.(*schema.ValidationError)
			codes[ve.Key] = ve.Code
		}
		assert.Equal(t, schema.CodeInvalidFormat, codes["to"])
		assert.Equal(t, schema.CodeInvalidExpression, codes["subject"])
	})

	t.Run("valid trigger", func(t *testing.T) {
		data := domain.NodeData{Trigger: &domain.TriggerConfig{Event: domain.TriggerDeadlineApproaching, Params: map[string]string{"days_before": "{{variables.lead_time}}"}}}
		assert.NoError(t, forms.Validate(ctx, catalog, domain.KindTrigger, data))
	})

	t.Run("required trigger param", func(t *testing.T) {
		data := domain.NodeData{Trigger: &domain.TriggerConfig{Event: domain.TriggerTaskStatusChanged}}
		msgs := schema.Messages(forms.Validate(ctx, catalog, domain.KindTrigger, data))
		assert.Equal(t, "Status is required", msgs["status"])
	})

	t.Run("condition operator mismatch", func(t *testing.T) {
		data := domain.NodeData{Condition: &domain.ConditionConfig{
			Mode: domain.ModeVariableCompare, LeftOperand: "{{task.due_date}}", Operator: domain.OpContains, RightOperand: "2026-01-01",
		}}
		msgs := schema.Messages(forms.Validate(ctx, catalog, domain.KindCondition, data))
		assert.Contains(t, msgs, "operator")
	})

	t.Run("custom expression must be an expression", func(t *testing.T) {
		data := domain.NodeData{Condition: &domain.ConditionConfig{
			Mode: domain.ModeCustomExpression, LeftOperand: "task.title", Operator: domain.OpEquals, RightOperand: "x",
		}}
		errs := schema.ValidationErrors(forms.Validate(ctx, catalog, domain.KindCondition, data))
		require.Len(t, errs, 1)
		assert.Equal(t, schema.CodeInvalidExpression, errs[0].(*schema.ValidationError).Code)
	})

	t.Run("fixed field outside list", func(t *testing.T) {
		data := domain.NodeData{Condition: &domain.ConditionConfig{
			Mode: domain.ModeFixedField, LeftOperand: "task.title", Operator: domain.OpEquals, RightOperand: "x",
		}}
		msgs := schema.Messages(forms.Validate(ctx, catalog, domain.KindCondition, data))
		assert.Equal(t, "unknown field", msgs["leftOperand"])
	})

	t.Run("unknown action type", func(t *testing.T) {
		data := domain.NodeData{Action: &domain.ActionConfig{Type: "launch_rocket"}}
		errs := schema.ValidationErrors(forms.Validate(ctx, catalog, domain.KindAction, data))
		require.Len(t, errs, 1)
		ve := errs[0].(*schema.ValidationError)
		assert.Equal(t, "type", ve.Key)
		assert.Equal(t, schema.CodeInvalidFormat, ve.Code)
	})

	t.Run("unknown trigger event", func(t *testing.T) {
		data := domain.NodeData{Trigger: &domain.TriggerConfig{Event: "moon_landed"}}
		msgs := schema.Messages(forms.Validate(ctx, catalog, domain.KindTrigger, data))
		assert.Equal(t, map[string]string{"event": "unknown trigger event"}, msgs)
	})

	t.Run("stale params are not validated", func(t *testing.T) {
		data := domain.NodeData{Action: &domain.ActionConfig{Type: domain.ActionAssignTask, Params: map[string]string{
			"assignee": "Sam Wilson",
			"message":  "{{task.title",
		}}}
		assert.NoError(t, forms.Validate(ctx, catalog, domain.KindAction, data))
	})

	t.Run("number right operand", func(t *testing.T) {
		data := domain.NodeData{Condition: &domain.ConditionConfig{
			Mode: domain.ModeVariableCompare, LeftOperand: "{{task.story_points}}", Operator: domain.OpGreaterThan, RightOperand: "lots",
		}}
		errs := schema.ValidationErrors(forms.Validate(ctx, catalog, domain.KindCondition, data))
		require.Len(t, errs, 1)
		assert.Equal(t, schema.CodeInvalidFormat, errs[0].(*schema.ValidationError).Code)
	})
}

func TestAnnotate(t *testing.T) {
	n := domain.Node{ID: "n1", Kind: domain.KindAction, Data: domain.NodeData{
		Label:  "stale",
		Action: &domain.ActionConfig{Type: domain.ActionAssignTask},
	}}
	out := forms.Annotate(context.Background(), catalog, n)
	assert.Equal(t, "Assign task", out.Data.Label)
	assert.Equal(t, map[string]string{"assignee": "Assignee is required"}, out.Data.Errors)
	assert.Equal(t, "stale", n.Data.Label)

	out.Data.Action.Params = map[string]string{"assignee": "Sam Wilson"}
	again := forms.Annotate(context.Background(), catalog, out)
	assert.Nil(t, again.Data.Errors)
	assert.Equal(t, "Assign to Sam Wilson", again.Data.Label)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, "Project is created", forms.Default(domain.KindTrigger).Label)
	assert.Equal(t, domain.ModeVariableCompare, forms.Default(domain.KindCondition).Condition.Mode)
	assert.Equal(t, domain.ActionSendNotification, forms.Default(domain.KindAction).Action.Type)
}
