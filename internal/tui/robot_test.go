package tui

import (
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

func sweepValue(distances ...uint16) domain.MetricValue {
	var raw []byte
	for _, d := range distances {
		raw = binary.LittleEndian.AppendUint16(raw, d)
	}
	return domain.ManyValue(domain.U16, raw)
}

func TestPolarStraightAheadAndSides(t *testing.T) {
	row, col := polar(0, fullScaleCM)
	assert.Equal(t, sensorRow-rayRows, row)
	assert.Equal(t, sensorCol, col)

	row, col = polar(90, fullScaleCM/2)
	assert.Equal(t, sensorRow, row)
	assert.Equal(t, sensorCol+rayRows, col)

	row, col = polar(-90, fullScaleCM/2)
	assert.Equal(t, sensorRow, row)
	assert.Equal(t, sensorCol-rayRows, col)
}

func TestRobotPaneHiddenWithoutTelemetry(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.pending = []domain.Packet{telemetry(1, "speed", domain.U8Value(3))}
	m, _ = update(t, m, RepaintMsg{})
	assert.Empty(t, m.viewRobot())
	assert.NotContains(t, m.View(), "Robot")
}

func TestRobotPaneDrawsRaySweepAndSpeed(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.pending = []domain.Packet{
		telemetry(1, "ultrasonic:distance", domain.U32Value(150)),
		telemetry(1, "ultrasonic:heading", domain.I16Value(-12)),
		telemetry(1, "ultrasonic:last_readings", sweepValue(300, 300, 300)),
		telemetry(1, "motor:drive_speed", domain.F32Value(-0.5)),
	}
	m, _ = update(t, m, RepaintMsg{})

	robot := m.viewRobot()
	require.NotEmpty(t, robot)
	assert.Contains(t, robot, "Robot")
	assert.Contains(t, robot, "150cm")
	assert.Contains(t, robot, "heading: -12°")
	assert.Contains(t, robot, "-0.500")
	assert.Contains(t, robot, "▼")
	assert.Contains(t, robot, "·")
	assert.Len(t, strings.Split(robot, "\n"), robotCanvasHeight)
	assert.Contains(t, m.View(), "150cm")
}

func TestDrawRobotForwardArrow(t *testing.T) {
	c := drawRobot(robotTelemetry{driveSpeed: 1, hasDriveSpeed: true})
	tip := sensorRow + robotHeight/2 - arrowRows
	assert.Equal(t, '▲', c.cells[tip][sensorCol].r)

	c = drawRobot(robotTelemetry{driveSpeed: 0, hasDriveSpeed: true})
	out := c.String()
	assert.NotContains(t, out, "▲")
	assert.NotContains(t, out, "▼")
}

func TestDrawRobotSweepOrientation(t *testing.T) {
	sweep := make([]uint64, 181)
	sweep[0] = 150   // far left
	sweep[90] = 300  // straight ahead
	sweep[180] = 150 // far right
	c := drawRobot(robotTelemetry{sweep: sweep, hasSweep: true})

	assert.Equal(t, '·', c.cells[sensorRow-rayRows][sensorCol].r)
	assert.Equal(t, '·', c.cells[sensorRow][sensorCol-rayRows].r)
	assert.Equal(t, '·', c.cells[sensorRow][sensorCol+rayRows].r)
}

func TestPacketLogShowsSystemRows(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.pending = []domain.Packet{
		domain.SystemPacket(domain.EventConnected, time.Time{}),
		telemetry(42, "imu:x", domain.F32Value(1.5)),
		domain.SystemPacket(domain.EventDisconnected, time.Time{}),
	}
	m, _ = update(t, m, RepaintMsg{})

	lines := strings.Split(m.viewPackets(), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[system]")
	assert.Contains(t, lines[0], "connected")
	assert.Contains(t, lines[1], "imu:x")
	assert.Contains(t, lines[1], "f32")
	assert.Contains(t, lines[2], "disconnected")
}
