package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
)

// FieldType defines how a field is edited and how its literal values are checked.
type FieldType string

const (
	Text     FieldType = "text"
	TextArea FieldType = "textarea"
	Number   FieldType = "number"
	Email    FieldType = "email"
	Date     FieldType = "date"
	Select   FieldType = "select"
	Status   FieldType = "status"
	Priority FieldType = "priority"
	Assignee FieldType = "assignee"
	Team     FieldType = "team"
)

// ForVarType maps a variable type onto the field type used to edit its values.
func ForVarType(t domain.VarType) FieldType {
	switch t {
	case domain.TypeNumber:
		return Number
	case domain.TypeEmail:
		return Email
	case domain.TypeDate:
		return Date
	case domain.TypeStatus:
		return Status
	case domain.TypePriority:
		return Priority
	case domain.TypeAssignee:
		return Assignee
	case domain.TypeTeam:
		return Team
	default:
		return Text
	}
}

// OptionsSource reports the options-provider field type backing this field
// type, if any.
func (t FieldType) OptionsSource() (string, bool) {
	switch t {
	case Status, Priority, Assignee, Team:
		return string(t), true
	}
	return "", false
}

// Field describes one input of a node configuration form.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	// Options are static choices for Select fields.
	Options []string `json:"options,omitempty"`
	// OptionsFrom names the options-provider field type, fetched asynchronously.
	OptionsFrom string `json:"optionsFrom,omitempty"`
	// Expressions reports whether {{...}} references are accepted.
	Expressions bool   `json:"expressions"`
	Placeholder string `json:"placeholder,omitempty"`
}

// emailRegex mirrors the loose local@domain.tld shape.
var emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)

// checkLiteral validates a non-expression, non-empty value against its type.
func checkLiteral(t FieldType, value string) error {
	switch t {
	case Email:
		if !emailRegex.MatchString(value) {
			return fmt.Errorf("invalid email format")
		}
	case Number:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return fmt.Errorf("must be a number")
		}
	}
	return nil
}
