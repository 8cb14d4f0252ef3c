package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/variables"
)

// CatalogMarkdown lists vars as one markdown table per category, in the
// order of variables.Categories. Empty categories are skipped.
func CatalogMarkdown(vars []domain.Variable) string {
	groups := make(map[variables.Category][]domain.Variable)
	for _, v := range vars {
		c := variables.CategoryOf(v.Name)
		groups[c] = append(groups[c], v)
	}

	var sb strings.Builder
	sb.WriteString("# Variables\n")
	for _, c := range variables.Categories {
		group := groups[c]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", c.Title())
		sb.WriteString("| Name | Type | Description |\n|---|---|---|\n")
		for _, v := range group {
			fmt.Fprintf(&sb, "| `{{%s}}` | %s | %s |\n", v.Name, v.Type, escapeCell(v.Description))
		}
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
