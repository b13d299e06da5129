package tui

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeroteameindhoven/kestrel/internal/app/board"
	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

type fakeController struct {
	state    domain.WorkerState
	pending  []domain.Packet
	attaches int
	detaches int
	resets   int
	sent     []domain.RobotCommand
}

func (f *fakeController) State() domain.WorkerState         { return f.state }
func (f *fakeController) PortName() string                  { return "/dev/ttyTEST" }
func (f *fakeController) Attach()                           { f.attaches++ }
func (f *fakeController) Detach()                           { f.detaches++ }
func (f *fakeController) Reset()                            { f.resets++ }
func (f *fakeController) SendCommand(c domain.RobotCommand) { f.sent = append(f.sent, c) }

func (f *fakeController) DrainPackets() []domain.Packet {
	out := f.pending
	f.pending = nil
	return out
}

func telemetry(ts domain.Timestamp, name string, v domain.MetricValue) domain.Packet {
	return domain.TelemetryPacket(domain.Metric{Timestamp: ts, Name: domain.ParseMetricName(name), Value: v}, time.Time{})
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func newTestModel() (Model, *fakeController) {
	ctrl := &fakeController{state: domain.StateConnected}
	return NewModel(ctrl, board.New(16), nil), ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestRepaintDrainsIntoBoard(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.pending = []domain.Packet{
		telemetry(100, "imu:x", domain.F32Value(1)),
		telemetry(120, "speed", domain.U8Value(3)),
	}

	m, cmd := update(t, m, RepaintMsg{})
	assert.NotNil(t, cmd, "repaint re-arms the signal wait")
	assert.Len(t, m.board.Latest(), 2)
	assert.Empty(t, ctrl.pending)

	view := m.View()
	assert.Contains(t, view, "speed")
	assert.Contains(t, view, "u8")
	assert.Contains(t, view, "/dev/ttyTEST")
}

func TestRebootAnnouncedInStatus(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.pending = []domain.Packet{
		telemetry(100, "a", domain.U8Value(1)),
		telemetry(250, "a", domain.U8Value(2)),
		telemetry(80, "a", domain.U8Value(3)),
	}
	m, _ = update(t, m, tickMsg(time.Now()))
	assert.Equal(t, 1, m.board.Reboots())
	assert.Contains(t, m.status.text, "reboot")
	assert.Equal(t, 1, m.status.level)
}

func TestControlKeys(t *testing.T) {
	m, ctrl := newTestModel()
	for _, k := range []string{"a", "d", "r", "1", "2"} {
		var cmd tea.Cmd
		m, cmd = update(t, m, runes(k))
		assert.NotNil(t, cmd, k)
	}
	assert.Equal(t, 1, ctrl.attaches)
	assert.Equal(t, 1, ctrl.detaches)
	assert.Equal(t, 1, ctrl.resets)
	assert.Equal(t, []domain.RobotCommand{domain.CalibrateAmbientInfrared, domain.CalibrateReferenceInfrared}, ctrl.sent)
	assert.Contains(t, m.status.text, "calibrate-reference-infrared")
}

func TestSelectionHideAndFocus(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.pending = []domain.Packet{
		telemetry(1, "a", domain.U8Value(1)),
		telemetry(2, "b", domain.ManyValue(domain.U8, []byte{1, 2})),
		telemetry(3, "c", domain.I16Value(-1)),
	}
	m, _ = update(t, m, RepaintMsg{})

	m, _ = update(t, m, runes("f"))
	assert.True(t, m.board.IsFocused(domain.ParseMetricName("a")))

	m, _ = update(t, m, runes("j"))
	m, cmd := update(t, m, runes("f"))
	assert.False(t, m.board.IsFocused(domain.ParseMetricName("b")), "arrays can not be focused")
	assert.NotNil(t, cmd)
	assert.Contains(t, m.status.text, "[u8]")

	m, _ = update(t, m, runes("h"))
	assert.True(t, m.board.IsHidden(domain.ParseMetricName("b")))
	assert.Len(t, m.board.Latest(), 2)

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 1, m.selected, "selection is clamped to the visible rows")

	m, _ = update(t, m, runes("H"))
	assert.Equal(t, 0, m.board.HiddenCount())
}

func TestClearKey(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.pending = []domain.Packet{telemetry(1, "a", domain.U8Value(1))}
	m, _ = update(t, m, RepaintMsg{})
	m, _ = update(t, m, runes("c"))
	assert.Empty(t, m.board.Latest())
	assert.Empty(t, m.board.Packets())
	assert.Equal(t, 0, m.selected)
}

func TestLogRecordFades(t *testing.T) {
	m, _ := newTestModel()
	m, cmd := update(t, m, logRecordMsg{Summary: "serial port lost", Level: slog.LevelWarn})
	require.NotNil(t, cmd)
	assert.Equal(t, "serial port lost", m.status.text)
	seq := m.status.seq

	m, _ = update(t, m, logRecordFadeMsg{seq: seq - 1})
	assert.Equal(t, "serial port lost", m.status.text, "stale fade is ignored")

	m, _ = update(t, m, logRecordFadeMsg{seq: seq})
	assert.Empty(t, m.status.text)
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel()
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestSignalCoalesces(t *testing.T) {
	s := NewSignal()
	s.Notify()
	s.Notify()
	s.Notify()

	msg := s.wait()()
	assert.IsType(t, RepaintMsg{}, msg)
	select {
	case <-s.ch:
		t.Fatalf("expected a single pending notification")
	default:
	}
}

func TestDisconnectedBadge(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.state = domain.StateDisconnected
	assert.Contains(t, m.View(), "waiting for serial port")
	assert.Contains(t, m.View(), "no telemetry yet")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", sparkline(nil, 10))
	assert.Equal(t, "▁█", sparkline([]float64{0, 1}, 10))
	assert.Equal(t, "▁▁▁", sparkline([]float64{5, 5, 5}, 10))
	got := sparkline([]float64{0, 1, 2, 3}, 2)
	assert.Equal(t, 2, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "█"))
}
