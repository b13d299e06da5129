package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	namespaceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	nameStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	focusableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	opaqueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("210"))
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	systemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	eventStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("186"))
	robotStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("250"))
	sweepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	rayStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("186"))
	forwardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	paneStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)

	stateStyles = map[domain.WorkerState]lipgloss.Style{
		domain.StateConnected:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")),
		domain.StateDisconnected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		domain.StateResetting:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("81")),
		domain.StateDetached:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("240")),
	}
)

func stateBadge(s domain.WorkerState) string {
	label := " " + s.String() + " "
	if s == domain.StateDisconnected {
		label = " waiting for serial port "
	}
	return stateStyles[s].Render(label)
}

// renderName colors namespaces and the final name differently.
func renderName(n domain.MetricName) string {
	segs := n.Segments()
	out := ""
	for i, s := range segs {
		if i == len(segs)-1 {
			out += nameStyle.Render(s)
			break
		}
		out += namespaceStyle.Render(s) + dimStyle.Render(domain.NamespaceSeparator)
	}
	return out
}

func renderType(v domain.MetricValue) string {
	if v.IsFocusable() {
		return focusableStyle.Render(v.Type())
	}
	return opaqueStyle.Render(v.Type())
}
