// Package tui is the terminal front end: connection state, the latest value
// of every metric, sparklines for focused metrics, a robot diagram and the
// raw packet log.
package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aeroteameindhoven/kestrel/internal/app/board"
	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

// Controller is the subset of the worker controller the view drives.
type Controller interface {
	State() domain.WorkerState
	PortName() string
	Attach()
	Detach()
	Reset()
	SendCommand(domain.RobotCommand)
	DrainPackets() []domain.Packet
}

// Signal is a coalescing wake-up from the worker to the view. Notify never
// blocks.
type Signal struct {
	ch chan struct{}
}

func NewSignal() *Signal { return &Signal{ch: make(chan struct{}, 1)} }

func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// RepaintMsg asks the model to pull new packets.
type RepaintMsg struct{}

type tickMsg time.Time

const tickInterval = 250 * time.Millisecond

func (s *Signal) wait() tea.Cmd {
	return func() tea.Msg {
		<-s.ch
		return RepaintMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type status struct {
	text  string
	level int // 0 info, 1 warn, 2 error
	seq   int
}

type Model struct {
	ctrl   Controller
	board  *board.Board
	signal *Signal
	keys   KeyMap
	help   help.Model

	selected int
	status   status
	width    int
	height   int
}

func NewModel(ctrl Controller, b *board.Board, signal *Signal) Model {
	if signal == nil {
		signal = NewSignal()
	}
	return Model{
		ctrl:   ctrl,
		board:  b,
		signal: signal,
		keys:   DefaultKeyMap,
		help:   help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.signal.wait(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case RepaintMsg:
		m.pull()
		return m, m.signal.wait()

	case tickMsg:
		m.pull()
		return m, tick()

	case logRecordMsg:
		lvl := 1
		if msg.Level >= slog.LevelError {
			lvl = 2
		}
		return m, m.setStatus(msg.Summary, lvl)

	case logRecordFadeMsg:
		if msg.seq == m.status.seq {
			m.status.text = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) pull() {
	if n := m.board.Apply(m.ctrl.DrainPackets()); n > 0 {
		m.status = status{text: "device reboot detected, history cleared", level: 1, seq: m.status.seq + 1}
	}
	m.clampSelection()
}

func (m *Model) setStatus(text string, level int) tea.Cmd {
	m.status = status{text: text, level: level, seq: m.status.seq + 1}
	seq := m.status.seq
	return tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg { return logRecordFadeMsg{seq: seq} })
}

func (m *Model) clampSelection() {
	n := len(m.board.Latest())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// selectedName returns the metric under the cursor.
func (m Model) selectedName() (domain.MetricName, bool) {
	latest := m.board.Latest()
	if m.selected < 0 || m.selected >= len(latest) {
		return domain.MetricName{}, false
	}
	return latest[m.selected].Name, true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.selected--
		m.clampSelection()
	case key.Matches(msg, m.keys.Down):
		m.selected++
		m.clampSelection()
	case key.Matches(msg, m.keys.Attach):
		m.ctrl.Attach()
		return m, m.setStatus("attach requested", 0)
	case key.Matches(msg, m.keys.Detach):
		m.ctrl.Detach()
		return m, m.setStatus("detach requested", 0)
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
		return m, m.setStatus("reset requested", 0)
	case key.Matches(msg, m.keys.CalibrateAmbient):
		m.ctrl.SendCommand(domain.CalibrateAmbientInfrared)
		return m, m.setStatus("sent "+domain.CalibrateAmbientInfrared.String(), 0)
	case key.Matches(msg, m.keys.CalibrateReference):
		m.ctrl.SendCommand(domain.CalibrateReferenceInfrared)
		return m, m.setStatus("sent "+domain.CalibrateReferenceInfrared.String(), 0)
	case key.Matches(msg, m.keys.Hide):
		if name, ok := m.selectedName(); ok {
			m.board.Hide(name)
			m.clampSelection()
		}
	case key.Matches(msg, m.keys.UnhideAll):
		m.board.UnhideAll()
	case key.Matches(msg, m.keys.Clear):
		if name, ok := m.selectedName(); ok {
			m.board.Clear(name)
			m.clampSelection()
		}
	case key.Matches(msg, m.keys.Focus):
		if name, ok := m.selectedName(); ok {
			if !m.board.ToggleFocus(name) && !m.board.IsFocused(name) {
				if e, found := m.board.Lookup(name); found && !e.Value.IsFocusable() {
					return m, m.setStatus(e.Value.Type()+" can not be focused", 1)
				}
			}
		}
	}
	return m, nil
}
