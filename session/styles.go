package session

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title   lipgloss.Style
	index   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	rule    lipgloss.Style
}

// newStyles binds the palette to w, so colors are dropped when w is not a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		index:   r.NewStyle().Foreground(lipgloss.Color("12")),
		muted:   r.NewStyle().Faint(true),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		err:     r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		rule:    r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (st styles) hr(width int) string {
	return st.rule.Render(strings.Repeat("*", width))
}
