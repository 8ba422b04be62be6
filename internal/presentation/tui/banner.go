package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the skilltree banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Green)
	lines := []termenv.Style{
		termenv.String(`      _    _ _ _ _              `).Foreground(p.Color("#2dd4bf")),
		termenv.String(`  ___| | _(_) | | |_ _ __ ___  ___ `).Foreground(p.Color("#34d399")),
		termenv.String(` / __| |/ / | | | __| '__/ _ \/ _ \`).Foreground(p.Color("#4ade80")),
		termenv.String(` \__ \   <| | | | |_| | |  __/  __/`).Foreground(p.Color("#a3e635")),
		termenv.String(` |___/_|\_\_|_|_|\__|_|  \___|\___|`).Foreground(p.Color("#facc15")),
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintln(w)
}

// Status colours a one-line node status for terminal output.
func Status(n Row) string {
	p := termenv.ColorProfile()
	switch {
	case n.Selected:
		return termenv.String("● " + n.Label).Foreground(p.Color("#facc15")).Bold().String()
	case n.Locked:
		return termenv.String("○ " + n.Label).Foreground(p.Color("#64748b")).Faint().String()
	default:
		return termenv.String("◌ " + n.Label).Foreground(p.Color("#34d399")).String()
	}
}
