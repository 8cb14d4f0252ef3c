package domain

import "fmt"

// VarType is the declared type of a variable.
type VarType string

const (
	TypeText     VarType = "text"
	TypeNumber   VarType = "number"
	TypeEmail    VarType = "email"
	TypeDate     VarType = "date"
	TypeStatus   VarType = "status"
	TypePriority VarType = "priority"
	TypeAssignee VarType = "assignee"
	TypeTeam     VarType = "team"
)

// VarTypes lists every declared variable type.
var VarTypes = []VarType{TypeText, TypeNumber, TypeEmail, TypeDate, TypeStatus, TypePriority, TypeAssignee, TypeTeam}

// ParseVarType converts a raw string into a VarType. An empty string yields TypeText.
func ParseVarType(s string) (VarType, error) {
	if s == "" {
		return TypeText, nil
	}
	for _, t := range VarTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// IsOptionBacked reports whether values of this type come from the options provider.
func (t VarType) IsOptionBacked() bool {
	switch t {
	case TypeStatus, TypePriority, TypeAssignee, TypeTeam:
		return true
	}
	return false
}

// Variable is a named, typed value that fields may reference with {{name}}.
type Variable struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Type        VarType `json:"type" yaml:"type"`
	// Value is only set for custom variables.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// IsCustom reports whether the variable lives in the user-defined namespace.
func (v Variable) IsCustom() bool {
	return len(v.Name) > len(CustomVariablePrefix) && v.Name[:len(CustomVariablePrefix)] == CustomVariablePrefix
}
