package forms

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/expr"
	"github.com/aretw0/weave/pkg/schema"
)

// TypeResolver resolves a reference to the declared type of the variable it
// points at. ok is false when no variable matches.
type TypeResolver interface {
	Resolve(ctx context.Context, ref string) (t domain.VarType, ok bool)
}

// MaxLabelValue is the longest free-text value shown verbatim in a label.
const MaxLabelValue = 12

// Truncate shortens s to MaxLabelValue runes followed by "...".
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxLabelValue {
		return s
	}
	return string([]rune(s)[:MaxLabelValue]) + "..."
}

// display renders a value for a label: a lone well-formed reference is shown
// as its bare path.
func display(v string) string {
	v = strings.TrimSpace(v)
	if expr.IsWellFormed(v) {
		if refs := expr.ExtractReferences(v); len(refs) == 1 {
			v = refs[0]
		}
	}
	return Truncate(v)
}

// Default returns the initial configuration of a freshly added node.
func Default(kind domain.NodeKind) domain.NodeData {
	var d domain.NodeData
	switch kind {
	case domain.KindTrigger:
		d.Trigger = &domain.TriggerConfig{Event: domain.TriggerProjectCreated}
	case domain.KindCondition:
		d.Condition = &domain.ConditionConfig{Mode: domain.ModeVariableCompare, Operator: domain.OpEquals}
	case domain.KindAction:
		d.Action = &domain.ActionConfig{Type: domain.ActionSendNotification}
	}
	d.Label = Label(kind, d)
	return d
}

// Fields returns the inputs currently relevant to data.
func Fields(ctx context.Context, res TypeResolver, kind domain.NodeKind, data domain.NodeData) []schema.Field {
	switch kind {
	case domain.KindTrigger:
		if data.Trigger == nil {
			return nil
		}
		return TriggerFields(data.Trigger.Event)
	case domain.KindCondition:
		if data.Condition == nil {
			return nil
		}
		return ConditionFields(ctx, res, *data.Condition)
	case domain.KindAction:
		if data.Action == nil {
			return nil
		}
		return ActionFields(data.Action.Type)
	}
	return nil
}

// Values flattens the configuration into field name to value. Parameters that
// are not inputs of the current event or action type are left out.
func Values(kind domain.NodeKind, data domain.NodeData) map[string]string {
	out := make(map[string]string)
	switch kind {
	case domain.KindTrigger:
		if t := data.Trigger; t != nil {
			for k, v := range keepFields(t.Params, TriggerFields(t.Event)) {
				out[k] = v
			}
		}
	case domain.KindCondition:
		if c := data.Condition; c != nil {
			out[FieldLeft] = c.LeftOperand
			out[FieldOperator] = string(c.Operator)
			out[FieldRight] = c.RightOperand
		}
	case domain.KindAction:
		if a := data.Action; a != nil {
			for k, v := range keepFields(a.Params, ActionFields(a.Type)) {
				out[k] = v
			}
		}
	}
	return out
}

// Prune drops trigger and action parameters that are not inputs of the
// current event or action type.
func Prune(kind domain.NodeKind, data domain.NodeData) domain.NodeData {
	out := data.Clone()
	switch kind {
	case domain.KindTrigger:
		if t := out.Trigger; t != nil {
			t.Params = keepFields(t.Params, TriggerFields(t.Event))
		}
	case domain.KindAction:
		if a := out.Action; a != nil {
			a.Params = keepFields(a.Params, ActionFields(a.Type))
		}
	}
	return out
}

func keepFields(params map[string]string, fields []schema.Field) map[string]string {
	var out map[string]string
	for _, f := range fields {
		v, ok := params[f.Name]
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(fields))
		}
		out[f.Name] = v
	}
	return out
}

// CheckVariant fails with domain.ErrUnknownVariant when a present
// configuration names an event, action type or mode that cannot be selected.
func CheckVariant(data domain.NodeData) error {
	if t := data.Trigger; t != nil && !slices.Contains(TriggerEvents, t.Event) {
		return fmt.Errorf("%w: trigger event %q", domain.ErrUnknownVariant, t.Event)
	}
	if c := data.Condition; c != nil && !slices.Contains(ConditionModes, c.Mode) {
		return fmt.Errorf("%w: condition mode %q", domain.ErrUnknownVariant, c.Mode)
	}
	if a := data.Action; a != nil && !slices.Contains(ActionTypes, a.Type) {
		return fmt.Errorf("%w: action type %q", domain.ErrUnknownVariant, a.Type)
	}
	return nil
}

// Label summarizes the configuration. Data without a configuration keeps its
// current label.
func Label(kind domain.NodeKind, data domain.NodeData) string {
	switch kind {
	case domain.KindTrigger:
		if data.Trigger != nil {
			return triggerLabel(*data.Trigger)
		}
	case domain.KindCondition:
		if data.Condition != nil {
			return conditionLabel(*data.Condition)
		}
	case domain.KindAction:
		if data.Action != nil {
			return actionLabel(*data.Action)
		}
	}
	if data.Label != "" || kind == "" {
		return data.Label
	}
	return strings.ToUpper(string(kind[:1])) + string(kind[1:])
}

// Pseudo-fields reporting a missing configuration or an unknown variant.
const (
	configKey = "config"
	eventKey  = "event"
	typeKey   = "type"
)

// Validate checks every relevant field of data. The returned error, if any, is
// a *schema.AggregateError.
func Validate(ctx context.Context, res TypeResolver, kind domain.NodeKind, data domain.NodeData) error {
	if !hasConfig(kind, data) {
		return &schema.AggregateError{Errors: []error{&schema.ValidationError{
			Key:    configKey,
			Code:   schema.CodeRequired,
			Reason: string(kind) + " configuration is required",
		}}}
	}

	fields := Fields(ctx, res, kind, data)
	values := Values(kind, data)

	var errs []error
	if err := schema.Validate(fields, values); err != nil {
		errs = append(errs, schema.ValidationErrors(err)...)
	}
	switch kind {
	case domain.KindTrigger:
		if !slices.Contains(TriggerEvents, data.Trigger.Event) {
			errs = append(errs, &schema.ValidationError{Key: eventKey, Code: schema.CodeInvalidFormat, Reason: "unknown trigger event", Value: string(data.Trigger.Event)})
		}
	case domain.KindCondition:
		errs = append(errs, conditionChecks(ctx, res, *data.Condition, errs)...)
	case domain.KindAction:
		if !slices.Contains(ActionTypes, data.Action.Type) {
			errs = append(errs, &schema.ValidationError{Key: typeKey, Code: schema.CodeInvalidFormat, Reason: "unknown action type", Value: string(data.Action.Type)})
		}
	}
	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}

func hasConfig(kind domain.NodeKind, data domain.NodeData) bool {
	switch kind {
	case domain.KindTrigger:
		return data.Trigger != nil
	case domain.KindCondition:
		return data.Condition != nil
	case domain.KindAction:
		return data.Action != nil
	}
	return false
}

// Annotate returns n with its label re-derived and its inline errors replaced
// by the current validation result.
func Annotate(ctx context.Context, res TypeResolver, n domain.Node) domain.Node {
	n = n.Clone()
	n.Data.Label = Label(n.Kind, n.Data)
	n.Data.Errors = schema.Messages(Validate(ctx, res, n.Kind, n.Data))
	return n
}

// hasKey reports whether errs already holds a failure for key.
func hasKey(errs []error, key string) bool {
	for _, e := range errs {
		var ve *schema.ValidationError
		if errors.As(e, &ve) && ve.Key == key {
			return true
		}
	}
	return false
}

func withoutKeys(m map[string]string, keys ...string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
