package variables

import (
	"strings"

	"github.com/aretw0/weave/pkg/domain"
)

// Category groups catalog entries for browsing.
type Category string

const (
	CategoryTask    Category = "task"
	CategoryProject Category = "project"
	CategoryUser    Category = "user"
	CategoryTrigger Category = "trigger"
	CategoryCustom  Category = "custom"
	CategoryOther   Category = "other"
)

// Categories lists the browsable categories in display order.
var Categories = []Category{CategoryTask, CategoryProject, CategoryUser, CategoryTrigger, CategoryCustom}

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Title is the display heading of c.
func (c Category) Title() string {
	switch c {
	case CategoryTask:
		return "Task"
	case CategoryProject:
		return "Project"
	case CategoryUser:
		return "User"
	case CategoryTrigger:
		return "Trigger"
	case CategoryCustom:
		return "Custom"
	default:
		return "Other"
	}
}

// CategoryOf classifies a variable name by its prefix.
// trigger.user.* belongs to the user category, not trigger.
func CategoryOf(name string) Category {
	switch {
	case strings.HasPrefix(name, "task."):
		return CategoryTask
	case strings.HasPrefix(name, "project."):
		return CategoryProject
	case strings.HasPrefix(name, "current_user."), strings.HasPrefix(name, "trigger.user."):
		return CategoryUser
	case strings.HasPrefix(name, "trigger."):
		return CategoryTrigger
	case strings.HasPrefix(name, domain.CustomVariablePrefix):
		return CategoryCustom
	default:
		return CategoryOther
	}
}

// systemCatalog is the read-only set of variables every workflow can reference.
var systemCatalog = []domain.Variable{
	{Name: "task.title", Description: "The title of the task", Type: domain.TypeText},
	{Name: "task.description", Description: "The description of the task", Type: domain.TypeText},
	{Name: "task.status", Description: "The current status of the task", Type: domain.TypeStatus},
	{Name: "task.priority", Description: "The priority level of the task", Type: domain.TypePriority},
	{Name: "task.assignee", Description: "The person assigned to the task", Type: domain.TypeAssignee},
	{Name: "task.due_date", Description: "The due date of the task", Type: domain.TypeDate},
	{Name: "task.story_points", Description: "The story points assigned to the task", Type: domain.TypeNumber},
	{Name: "task.created_at", Description: "When the task was created", Type: domain.TypeDate},
	{Name: "task.updated_at", Description: "When the task was last updated", Type: domain.TypeDate},

	{Name: "project.name", Description: "The name of the project", Type: domain.TypeText},
	{Name: "project.owner", Description: "The owner of the project", Type: domain.TypeAssignee},
	{Name: "project.team", Description: "The team assigned to the project", Type: domain.TypeTeam},

	{Name: "current_user.name", Description: "The name of the current user", Type: domain.TypeText},
	{Name: "current_user.email", Description: "The email of the current user", Type: domain.TypeEmail},
	{Name: "current_user.role", Description: "The role of the current user", Type: domain.TypeText},

	{Name: "trigger.user.name", Description: "Name of the user who triggered the workflow", Type: domain.TypeText},
	{Name: "trigger.user.email", Description: "Email of the user who triggered the workflow", Type: domain.TypeEmail},
	{Name: "trigger.user.role", Description: "Role of the user who triggered the workflow", Type: domain.TypeText},
	{Name: "trigger.timestamp", Description: "When the workflow was triggered", Type: domain.TypeDate},
}

// System returns a copy of the system catalog in its fixed category order.
func System() []domain.Variable {
	out := make([]domain.Variable, len(systemCatalog))
	copy(out, systemCatalog)
	return out
}
