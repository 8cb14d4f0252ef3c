package schema

import (
	"errors"
	"testing"
)

func TestValidateField(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value string
		want  Code // empty means valid
	}{
		{"required empty", Field{Name: "to", Label: "To", Type: Email, Required: true}, "", CodeRequired},
		{"required blank", Field{Name: "to", Label: "To", Type: Email, Required: true}, "   ", CodeRequired},
		{"optional empty", Field{Name: "body", Type: TextArea}, "", ""},
		{"email ok", Field{Name: "to", Type: Email}, "jane@example.com", ""},
		{"email bad", Field{Name: "to", Type: Email}, "not-an-email", CodeInvalidFormat},
		{"email expression skips format", Field{Name: "to", Type: Email}, "{{current_user.email}}", ""},
		{"number ok", Field{Name: "n", Type: Number}, "3.5", ""},
		{"number bad", Field{Name: "n", Type: Number}, "three", CodeInvalidFormat},
		{"number expression", Field{Name: "n", Type: Number}, "{{task.story_points}}", ""},
		{"unbalanced expression", Field{Name: "n", Type: Number}, "{{task.story_points}}}}", CodeInvalidExpression},
		{"mixed text is not well-formed", Field{Name: "m", Type: TextArea}, "Hi {{task.assignee}}", CodeInvalidExpression},
		{"text literal", Field{Name: "title", Type: Text}, "anything", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateField(tt.field, tt.value)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("ValidateField() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ValidateField() = nil, want %s", tt.want)
			}
			if got.Code != tt.want {
				t.Errorf("Code = %s, want %s", got.Code, tt.want)
			}
			if got.Key != tt.field.Name {
				t.Errorf("Key = %q, want %q", got.Key, tt.field.Name)
			}
		})
	}
}

func TestValidate_Aggregates(t *testing.T) {
	fields := []Field{
		{Name: "to", Label: "To", Type: Email, Required: true},
		{Name: "subject", Label: "Subject", Type: Text, Required: true},
		{Name: "body", Label: "Body", Type: TextArea},
	}

	err := Validate(fields, map[string]string{"to": "x@y"})
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}
	if len(aggr.Errors) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(aggr.Errors), err)
	}

	msgs := Messages(err)
	if _, ok := msgs["to"]; !ok {
		t.Error("missing message for to")
	}
	if msgs["subject"] != "Subject is required" {
		t.Errorf("subject message = %q", msgs["subject"])
	}
}

func TestValidate_Success(t *testing.T) {
	fields := []Field{{Name: "status", Label: "Status", Type: Status, Required: true}}
	if err := Validate(fields, map[string]string{"status": "Completed"}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if Messages(nil) != nil {
		t.Error("Messages(nil) should be nil")
	}
}

func TestFieldType_OptionsSource(t *testing.T) {
	if src, ok := Assignee.OptionsSource(); !ok || src != "assignee" {
		t.Errorf("Assignee.OptionsSource() = %q, %v", src, ok)
	}
	if _, ok := Email.OptionsSource(); ok {
		t.Error("Email should not be option-backed")
	}
}
