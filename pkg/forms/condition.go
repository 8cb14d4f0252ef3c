package forms

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/expr"
	"github.com/aretw0/weave/pkg/schema"
)

// Condition field names.
const (
	FieldLeft     = "leftOperand"
	FieldOperator = "operator"
	FieldRight    = "rightOperand"
)

// ConditionModes lists the selectable comparison modes.
var ConditionModes = []domain.ConditionMode{
	domain.ModeVariableCompare,
	domain.ModeFixedField,
	domain.ModeCustomExpression,
}

// FixedFields are the left operands offered in fixed-field mode.
var FixedFields = []string{
	"task.status",
	"task.priority",
	"task.assignee",
	"project.team",
	"task.story_points",
	"task.due_date",
}

var (
	dateOps    = []domain.Operator{domain.OpBefore, domain.OpAfter, domain.OpOn}
	numberOps  = []domain.Operator{domain.OpEquals, domain.OpNotEquals, domain.OpGreaterThan, domain.OpLessThan, domain.OpGreaterThanOrEquals, domain.OpLessThanOrEquals}
	textOps    = []domain.Operator{domain.OpEquals, domain.OpNotEquals, domain.OpContains, domain.OpStartsWith, domain.OpEndsWith}
	enumOps    = []domain.Operator{domain.OpEquals, domain.OpNotEquals}
	unknownOps = []domain.Operator{
		domain.OpEquals, domain.OpNotEquals, domain.OpContains, domain.OpStartsWith, domain.OpEndsWith,
		domain.OpGreaterThan, domain.OpLessThan, domain.OpGreaterThanOrEquals, domain.OpLessThanOrEquals,
	}
)

var operatorSymbols = map[domain.Operator]string{
	domain.OpEquals:              "=",
	domain.OpNotEquals:           "!=",
	domain.OpContains:            "contains",
	domain.OpStartsWith:          "starts with",
	domain.OpEndsWith:            "ends with",
	domain.OpGreaterThan:         ">",
	domain.OpLessThan:            "<",
	domain.OpGreaterThanOrEquals: ">=",
	domain.OpLessThanOrEquals:    "<=",
	domain.OpBefore:              "before",
	domain.OpAfter:               "after",
	domain.OpOn:                  "on",
}

// Symbol returns the short form of op used in labels.
func Symbol(op domain.Operator) string {
	if s, ok := operatorSymbols[op]; ok {
		return s
	}
	return string(op)
}

// OperatorsForType returns the operators applicable to a resolved type.
// resolved false yields the union of the text and number sets.
func OperatorsForType(t domain.VarType, resolved bool) []domain.Operator {
	var ops []domain.Operator
	switch {
	case !resolved:
		ops = unknownOps
	case t == domain.TypeDate:
		ops = dateOps
	case t == domain.TypeNumber:
		ops = numberOps
	case t == domain.TypeText, t == domain.TypeEmail:
		ops = textOps
	case t.IsOptionBacked():
		ops = enumOps
	default:
		ops = unknownOps
	}
	return slices.Clone(ops)
}

func resolve(ctx context.Context, res TypeResolver, ref string) (domain.VarType, bool) {
	if res == nil || ref == "" {
		return domain.TypeText, false
	}
	return res.Resolve(ctx, ref)
}

// OperatorsFor returns the operators applicable to the left operand.
func OperatorsFor(ctx context.Context, res TypeResolver, left string) []domain.Operator {
	return OperatorsForType(resolve(ctx, res, left))
}

// ConditionFields returns the inputs of a condition in its current mode. The
// right operand is typed after the left operand's resolved type.
func ConditionFields(ctx context.Context, res TypeResolver, c domain.ConditionConfig) []schema.Field {
	t, ok := resolve(ctx, res, c.LeftOperand)

	var left schema.Field
	switch c.Mode {
	case domain.ModeFixedField:
		left = schema.Field{Name: FieldLeft, Label: "Field", Type: schema.Select, Required: true, Options: FixedFields}
	case domain.ModeCustomExpression:
		left = schema.Field{Name: FieldLeft, Label: "Expression", Type: schema.Text, Required: true, Expressions: true, Placeholder: "{{task.title}}"}
	default:
		left = schema.Field{Name: FieldLeft, Label: "Variable", Type: schema.Text, Required: true, Expressions: true, Placeholder: "{{task.status}}"}
	}

	ops := OperatorsForType(t, ok)
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}

	rightType := schema.Text
	if ok {
		rightType = schema.ForVarType(t)
	}
	right := schema.Field{Name: FieldRight, Label: "Value", Type: rightType, Required: true, Expressions: true}
	if src, backed := rightType.OptionsSource(); backed {
		right.OptionsFrom = src
	}

	return []schema.Field{
		left,
		{Name: FieldOperator, Label: "Operator", Type: schema.Select, Required: true, Options: names},
		right,
	}
}

// conditionChecks adds the rules a single field cannot express: the operator
// must fit the left operand, fixed fields must come from the list and a custom
// expression must actually be an expression.
func conditionChecks(ctx context.Context, res TypeResolver, c domain.ConditionConfig, prior []error) []error {
	var errs []error
	if c.LeftOperand != "" && !hasKey(prior, FieldLeft) {
		switch c.Mode {
		case domain.ModeFixedField:
			if !slices.Contains(FixedFields, c.LeftOperand) {
				errs = append(errs, &schema.ValidationError{Key: FieldLeft, Code: schema.CodeInvalidFormat, Reason: "unknown field", Value: c.LeftOperand})
			}
		case domain.ModeCustomExpression:
			if !expr.IsExpression(c.LeftOperand) {
				errs = append(errs, &schema.ValidationError{Key: FieldLeft, Code: schema.CodeInvalidExpression, Reason: "must contain a {{...}} expression", Value: c.LeftOperand})
			}
		}
	}
	if c.Operator != "" && !hasKey(prior, FieldOperator) {
		if !slices.Contains(OperatorsFor(ctx, res, c.LeftOperand), c.Operator) {
			errs = append(errs, &schema.ValidationError{Key: FieldOperator, Code: schema.CodeInvalidFormat, Reason: "operator does not apply to this value", Value: string(c.Operator)})
		}
	}
	if !slices.Contains(ConditionModes, c.Mode) {
		errs = append(errs, &schema.ValidationError{Key: "mode", Code: schema.CodeInvalidFormat, Reason: "unknown mode", Value: string(c.Mode)})
	}
	return errs
}

func conditionLabel(c domain.ConditionConfig) string {
	if c.LeftOperand == "" {
		return "Condition"
	}
	label := display(c.LeftOperand) + " " + Symbol(c.Operator)
	if c.RightOperand != "" {
		label += " " + display(c.RightOperand)
	}
	return label
}

// SwitchMode selects a new comparison mode, resetting both operands, the
// operator and every error. An unknown mode fails with domain.ErrUnknownVariant.
func SwitchMode(data domain.NodeData, mode domain.ConditionMode) (domain.NodeData, error) {
	if !slices.Contains(ConditionModes, mode) {
		return domain.NodeData{}, fmt.Errorf("%w: condition mode %q", domain.ErrUnknownVariant, mode)
	}
	out := data.Clone()
	out.Condition = &domain.ConditionConfig{Mode: mode, Operator: domain.OpEquals}
	out.Errors = nil
	out.Label = conditionLabel(*out.Condition)
	return out, nil
}

// SetLeftOperand changes the left operand. When the resolved type changes the
// right operand is cleared, and an operator that no longer applies falls back
// to the first applicable one.
func SetLeftOperand(ctx context.Context, res TypeResolver, data domain.NodeData, left string) domain.NodeData {
	out := data.Clone()
	if out.Condition == nil {
		out.Condition = &domain.ConditionConfig{Mode: domain.ModeVariableCompare}
	}
	c := out.Condition

	oldType, _ := resolve(ctx, res, c.LeftOperand)
	newType, ok := resolve(ctx, res, left)
	c.LeftOperand = left
	if oldType != newType {
		c.RightOperand = ""
	}
	ops := OperatorsForType(newType, ok)
	if !slices.Contains(ops, c.Operator) {
		c.Operator = ops[0]
	}

	out.Errors = withoutKeys(out.Errors, FieldLeft, FieldOperator, FieldRight)
	out.Label = conditionLabel(*c)
	return out
}
