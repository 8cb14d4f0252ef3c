// Package graph renders workflow snapshots as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
)

// GraphOverlay contains editor state to highlight on the graph.
type GraphOverlay struct {
	Selected []string
	// Invalid nodes are styled as errors. When nil, nodes carrying inline
	// errors are used.
	Invalid []string
}

// GenerateMermaid produces a Mermaid flowchart from a snapshot.
// Node shapes follow the kind:
// - Trigger: ([Stadium])
// - Condition: {Rhombus}
// - Action: [Rectangle]
// Condition branches are labelled and coloured like the editor draws them.
func GenerateMermaid(s domain.Snapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range s.Nodes {
		opener, closer := "[", "]"
		switch node.Kind {
		case domain.KindTrigger:
			opener, closer = "([", "])"
		case domain.KindCondition:
			opener, closer = "{", "}"
		}
		label := node.Data.Label
		if label == "" {
			label = node.ID
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, escapeLabel(label), closer)
	}

	for i, e := range s.Edges {
		arrow := "-->"
		if e.SourceHandle != domain.HandleNone {
			arrow = fmt.Sprintf("-- \"%s\" -->", e.SourceHandle)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target))
		if e.SourceHandle != domain.HandleNone && e.Style.Stroke != "" {
			fmt.Fprintf(&sb, "    linkStyle %d stroke:%s\n", i, e.Style.Stroke)
		}
	}

	if overlay != nil {
		invalid := overlay.Invalid
		if invalid == nil {
			for _, n := range s.Nodes {
				if len(n.Data.Errors) > 0 {
					invalid = append(invalid, n.ID)
				}
			}
		}

		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef selected stroke:#3b82f6,stroke-width:3px;\n")
		sb.WriteString("    classDef invalid fill:#fee2e2,stroke:#ef4444,color:#000;\n")
		writeClass(&sb, overlay.Selected, "selected")
		writeClass(&sb, invalid, "invalid")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID != "" && !seen[safeID] {
			seen[safeID] = true
			fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
		}
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
