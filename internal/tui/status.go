// internal/tui/status.go
package tui

import "github.com/charmbracelet/lipgloss"

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type statusLine struct {
	kind statusKind
	text string
}

// render returns the styled status text, or "" when there is nothing to show.
func (s statusLine) render() string {
	if s.text == "" {
		return ""
	}
	style := lipgloss.NewStyle().Padding(0, 1)
	switch s.kind {
	case statusSuccess:
		style = style.Foreground(lipgloss.Color("42"))
	case statusError:
		style = style.Foreground(lipgloss.Color("9")).Bold(true)
	default:
		style = style.Foreground(lipgloss.Color("244"))
	}
	return style.Render(s.text)
}

func renderLangBadge(src, tgt string) string {
	badgeStyle := lipgloss.NewStyle().Background(lipgloss.Color("229")).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
	return badgeStyle.Render(src + " -> " + tgt)
}
