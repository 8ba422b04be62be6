package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/skilltree/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the tree.
// It applies semantic styling:
// - Start: ((Circle))
// - Skill: ["Label"] with its cost when above one
// Projected flags become classes: selected nodes are highlighted and locked
// nodes are greyed out.
func GenerateMermaid(nodes []domain.Node, edges []domain.Edge) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var selected, locked []string
	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		if node.IsStart() {
			opener, closer = "((", "))"
		}

		label := node.Label
		if label == "" {
			label = node.ID
		}
		label = strings.ReplaceAll(label, "\"", "'")
		if node.PointCost() > 1 {
			label = fmt.Sprintf("%s <br/> %d pts", label, node.PointCost())
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		switch {
		case node.Selected:
			selected = append(selected, safeID)
		case node.Locked:
			locked = append(locked, safeID)
		}
	}

	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target)))
	}

	if len(selected) > 0 || len(locked) > 0 {
		sb.WriteString("\n    %% Selection Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef locked fill:#eceff1,stroke:#90a4ae,stroke-dasharray:4 2,color:#607d8b;\n")
		if len(selected) > 0 {
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", strings.Join(selected, ",")))
		}
		if len(locked) > 0 {
			sb.WriteString(fmt.Sprintf("    class %s locked;\n", strings.Join(locked, ",")))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
