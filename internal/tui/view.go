package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aeroteameindhoven/kestrel/internal/app/board"
)

const (
	defaultWidth   = 100
	packetRows     = 8
	sparklineWidth = 40
)

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{
		m.viewHeader(),
		paneStyle.Width(width - 2).Render(m.viewLatest()),
	}
	if focused := m.viewFocused(); focused != "" {
		sections = append(sections, paneStyle.Width(width-2).Render(focused))
	}
	if robot := m.viewRobot(); robot != "" {
		sections = append(sections, paneStyle.Render(robot))
	}
	sections = append(sections,
		paneStyle.Width(width-2).Render(m.viewPackets()),
		m.viewStatus(),
		m.help.View(m.keys),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewHeader() string {
	parts := []string{
		headerStyle.Render("kestrel"),
		dimStyle.Render(m.ctrl.PortName()),
		stateBadge(m.ctrl.State()),
		dimStyle.Render("device time " + m.board.Now().String()),
	}
	if n := m.board.Reboots(); n > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("%d reboot(s)", n)))
	}
	if n := m.board.HiddenCount(); n > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d hidden", n)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) viewLatest() string {
	latest := m.board.Latest()
	if len(latest) == 0 {
		return dimStyle.Render("no telemetry yet")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %6s  %-32s %-8s %s", "TSLM", "Cnt", "Name", "Type", "Value")))
	for i, e := range latest {
		sb.WriteByte('\n')
		sb.WriteString(m.viewEntry(i, e))
	}
	return sb.String()
}

// viewEntry renders one table row. TSLM is the device time elapsed since
// the metric was last seen.
func (m Model) viewEntry(i int, e board.Entry) string {
	marker := "  "
	if m.board.IsFocused(e.Name) {
		marker = "* "
	}
	name := renderName(e.Name)
	if pad := 32 - lipgloss.Width(name); pad > 0 {
		name += strings.Repeat(" ", pad)
	}
	typ := renderType(e.Value)
	if pad := 8 - lipgloss.Width(typ); pad > 0 {
		typ += strings.Repeat(" ", pad)
	}
	row := fmt.Sprintf("%-10s %6d  %s %s %s", m.board.SinceLatest(e), e.Count, name, typ, e.Value)
	if i == m.selected {
		return selectedStyle.Render(marker + row)
	}
	return marker + row
}

func (m Model) viewFocused() string {
	focused := m.board.Focused()
	if len(focused) == 0 {
		return ""
	}
	lines := make([]string, 0, len(focused))
	for _, name := range focused {
		series := m.board.Series(name)
		last := ""
		if e, ok := m.board.Lookup(name); ok {
			last = e.Value.String()
		}
		lines = append(lines, fmt.Sprintf("%-32s %s %s", name, sparkline(series, sparklineWidth), last))
	}
	return strings.Join(lines, "\n")
}

// viewPackets renders the tail of the packet log, newest last. Connect and
// disconnect rows have no device time.
func (m Model) viewPackets() string {
	packets := m.board.Packets()
	if len(packets) == 0 {
		return dimStyle.Render("no packets yet")
	}
	packets = packets[max(len(packets)-packetRows, 0):]
	lines := make([]string, len(packets))
	for i, p := range packets {
		if !p.IsTelemetry() {
			lines[i] = fmt.Sprintf("%-10s %-32s %s %s", "", "", systemStyle.Render("[system]"), eventStyle.Render(p.Event.String()))
			continue
		}
		mt := p.Metric
		lines[i] = fmt.Sprintf("%-10s %-32s %-8s %s", mt.Timestamp, mt.Name, mt.Value.Type(), mt.Value)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewStatus() string {
	switch m.status.level {
	case 2:
		return errorStyle.Render(m.status.text)
	case 1:
		return warnStyle.Render(m.status.text)
	default:
		return dimStyle.Render(m.status.text)
	}
}
