package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/skilltree/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// Row is the display form of a node.
type Row struct {
	ID       string
	Label    string
	Category string
	Cost     int
	Requires []string
	Selected bool
	Locked   bool
}

// Rows converts projected nodes into display rows. The start node is skipped.
func Rows(nodes []domain.Node, edges []domain.Edge) []Row {
	rows := make([]Row, 0, len(nodes))
	for _, n := range nodes {
		if n.IsStart() {
			continue
		}
		label := n.Label
		if label == "" {
			label = n.ID
		}
		rows = append(rows, Row{
			ID:       n.ID,
			Label:    label,
			Category: n.Category,
			Cost:     n.PointCost(),
			Requires: domain.Prerequisites(n.ID, edges),
			Selected: n.Selected,
			Locked:   n.Locked,
		})
	}
	return rows
}

// Markdown renders the tree as a markdown document with one table row per skill.
func Markdown(title string, nodes []domain.Node, edges []domain.Edge, spent, budget int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if budget > 0 {
		fmt.Fprintf(&sb, "**Skill points:** %d / %d spent\n\n", spent, budget)
	} else {
		fmt.Fprintf(&sb, "**Skill points:** %d spent\n\n", spent)
	}

	sb.WriteString("| | ID | Skill | Category | Cost | Requires |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range Rows(nodes, edges) {
		fmt.Fprintf(&sb, "| %s | `%s` | %s | %s | %d | %s |\n",
			mark(r), r.ID, escape(r.Label), r.Category, r.Cost, strings.Join(r.Requires, ", "))
	}
	return sb.String()
}

func mark(r Row) string {
	switch {
	case r.Selected:
		return "✅"
	case r.Locked:
		return "🔒"
	default:
		return "⬜"
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
