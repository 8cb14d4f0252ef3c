// Package schema describes the input fields of a node configuration form and
// validates their values.
//
// A Field names a value, its FieldType, whether it is required, and where its
// select options come from. Values are always strings: a value is either a
// literal or an expression (it contains a {{...}} token), decided structurally.
//
// Validation order for one field:
//
//  1. an empty required value fails with CodeRequired;
//  2. an expression fails with CodeInvalidExpression unless it is well-formed;
//  3. a literal is checked against its type (email shape, numeric parse).
//
//	fields := []schema.Field{
//	    {Name: "to", Label: "To", Type: schema.Email, Required: true},
//	    {Name: "days_before", Label: "Days before", Type: schema.Number, Required: true},
//	}
//	if err := schema.Validate(fields, map[string]string{"to": "{{current_user.email}}"}); err != nil {
//	    for _, fe := range schema.ValidationErrors(err) { ... }
//	}
package schema
