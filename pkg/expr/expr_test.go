package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExpression(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"{{task.title}}", true},
		{"Hello {{ current_user.name }}!", true},
		{"{{}}", true},
		{"plain text", false},
		{"{task.title}", false},
		{"{{unterminated", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsExpression(tt.in), "IsExpression(%q)", tt.in)
	}
}

func TestExtractReferences(t *testing.T) {
	assert.Equal(t, []string{"task.title", "task.status"},
		ExtractReferences("{{task.title}} and {{task.status}}"))
	assert.Equal(t, []string{"a", "a"}, ExtractReferences("{{ a }}{{a}}"))
	assert.Empty(t, ExtractReferences("no tokens here"))
	assert.Equal(t, []string{"x"}, ExtractReferences("{{x}} }}"))
}

func TestFirstReference(t *testing.T) {
	ref, ok := FirstReference("due {{ task.due_date }} or {{task.created_at}}")
	assert.True(t, ok)
	assert.Equal(t, "task.due_date", ref)

	_, ok = FirstReference("literal")
	assert.False(t, ok)
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"{{a}}", true},
		{"{{a}}{{b}}", true},
		{"{{a{{b}}}}", true}, // shallow check, known limitation
		{"{{a}", false},
		{"plain text", false},
		{"Hi {{a}}", false},
		{"{{a}} later", false},
		{"{{{{x}}", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsWellFormed(tt.in), "IsWellFormed(%q)", tt.in)
	}
}

func TestInsert(t *testing.T) {
	assert.Equal(t, "Hi {{user.name}}!", Insert("Hi X!", "user.name", 3, 4))
	assert.Equal(t, "Hi {{user.name}}", Insert("Hi ", "user.name", 3, 3))
	assert.Equal(t, "Hi {{user.name}}", Insert("Hi", "user.name", -1, -1))
	assert.Equal(t, "Hi {{user.name}}", Insert("Hi", "user.name", 1, 9))
	assert.Equal(t, "Olá {{user.name}}!", Insert("Olá X!", "user.name", 4, 5))
	assert.Equal(t, "日本 {{task.title}}", Insert("日本 ", "task.title", 3, 3))
	assert.Equal(t, "日本 {{task.title}}", Insert("日本", "task.title", 0, 3))
}

func TestUnique(t *testing.T) {
	got := Unique("{{a}} {{b}}", "{{b}}", "none", "{{ c }}{{a}}")
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
