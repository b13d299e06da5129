package tui

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aeroteameindhoven/kestrel/internal/app/board"
	"github.com/aeroteameindhoven/kestrel/internal/domain"
)

var (
	ultrasonicDistance = domain.NewNamespace("ultrasonic", domain.NewName("distance"))
	ultrasonicHeading  = domain.NewNamespace("ultrasonic", domain.NewName("heading"))
	ultrasonicSweep    = domain.NewNamespace("ultrasonic", domain.NewName("last_readings"))
	motorDriveSpeed    = domain.NewNamespace("motor", domain.NewName("drive_speed"))
)

// Robot diagram geometry, in terminal cells. The sensor sits in the middle
// of the robot's top edge; a reading of fullScaleCM reaches rayRows rows
// above it. Cells are about twice as tall as wide, so x is scaled by two.
const (
	robotCanvasWidth  = 41
	robotCanvasHeight = 19
	sensorRow         = 10
	sensorCol         = robotCanvasWidth / 2
	rayRows           = 9
	fullScaleCM       = 300.0
	robotHalfWidth    = 8
	robotHeight       = 7
	arrowRows         = 2
)

type cell struct {
	r     rune
	style lipgloss.Style
	set   bool
}

type canvas struct {
	cells [robotCanvasHeight][robotCanvasWidth]cell
}

func (c *canvas) put(row, col int, r rune, style lipgloss.Style) {
	if row < 0 || row >= robotCanvasHeight || col < 0 || col >= robotCanvasWidth {
		return
	}
	c.cells[row][col] = cell{r: r, style: style, set: true}
}

func (c *canvas) text(row, col int, s string, style lipgloss.Style) {
	for i, r := range []rune(s) {
		c.put(row, col+i, r, style)
	}
}

// polar maps a reading at heading degrees (0 straight ahead, positive to the
// right) and distance centimetres onto a cell relative to the sensor.
func polar(heading float64, distance float64) (row, col int) {
	rad := heading * math.Pi / 180
	r := distance / fullScaleCM
	dx := r * math.Sin(rad) * 2 * rayRows
	dy := r * math.Cos(rad) * rayRows
	return sensorRow - int(math.Round(dy)), sensorCol + int(math.Round(dx))
}

// line plots r on every cell between the sensor and (row, col).
func (c *canvas) line(row, col int, r rune, style lipgloss.Style) {
	dr, dc := float64(row-sensorRow), float64(col-sensorCol)
	steps := int(math.Max(math.Abs(dr), math.Abs(dc)))
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		c.put(sensorRow+int(math.Round(dr*f)), sensorCol+int(math.Round(dc*f)), r, style)
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for row := range c.cells {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for _, cl := range c.cells[row] {
			if !cl.set {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(cl.style.Render(string(cl.r)))
		}
	}
	return sb.String()
}

// robotTelemetry is what the diagram needs from the board.
type robotTelemetry struct {
	distanceCM uint64
	headingDeg int64
	hasRay     bool

	sweep    []uint64
	hasSweep bool

	driveSpeed    float64
	hasDriveSpeed bool
}

func readRobot(b *board.Board) (robotTelemetry, bool) {
	var t robotTelemetry
	var hasDistance, hasHeading bool
	if e, ok := b.Lookup(ultrasonicDistance); ok {
		t.distanceCM, hasDistance = e.Value.AsUnsignedInteger()
	}
	if e, ok := b.Lookup(ultrasonicHeading); ok {
		t.headingDeg, hasHeading = e.Value.AsSignedInteger()
	}
	t.hasRay = hasDistance && hasHeading
	if e, ok := b.Lookup(ultrasonicSweep); ok {
		if seq, ok := e.Value.UnsignedIntegerSeq(); ok {
			t.sweep = slices.Collect(seq)
			t.hasSweep = true
		}
	}
	if e, ok := b.Lookup(motorDriveSpeed); ok {
		t.driveSpeed, t.hasDriveSpeed = e.Value.AsFloat()
	}
	return t, t.hasRay || t.hasSweep || t.hasDriveSpeed
}

// viewRobot draws the robot seen from above with its ultrasonic sweep, the
// current ultrasonic ray and the drive speed. It is empty when none of that
// telemetry has arrived.
func (m Model) viewRobot() string {
	t, ok := readRobot(m.board)
	if !ok {
		return ""
	}
	return drawRobot(t).String()
}

func drawRobot(t robotTelemetry) *canvas {
	var c canvas

	// Sweep readings are one degree apart starting at the far left.
	for i, d := range t.sweep {
		row, col := polar(float64(i-90), float64(d))
		c.put(row, col, '·', sweepStyle)
	}

	if t.hasRay {
		for row := sensorRow - 1; row >= sensorRow-rayRows; row -= 2 {
			c.put(row, sensorCol, '┆', forwardStyle)
		}
		row, col := polar(float64(t.headingDeg), float64(t.distanceCM))
		c.line(row, col, '•', rayStyle)
		label := fmt.Sprintf("%dcm", t.distanceCM)
		c.text(row-1, col-len(label)/2, label, rayStyle)
	}

	top, bottom := sensorRow, sensorRow+robotHeight-1
	left, right := sensorCol-robotHalfWidth, sensorCol+robotHalfWidth
	for col := left + 1; col < right; col++ {
		c.put(top, col, '─', robotStyle)
		c.put(bottom, col, '─', robotStyle)
		for row := top + 1; row < bottom; row++ {
			c.put(row, col, ' ', robotStyle)
		}
	}
	for row := top + 1; row < bottom; row++ {
		c.put(row, left, '│', robotStyle)
		c.put(row, right, '│', robotStyle)
	}
	c.put(top, left, '╭', robotStyle)
	c.put(top, right, '╮', robotStyle)
	c.put(bottom, left, '╰', robotStyle)
	c.put(bottom, right, '╯', robotStyle)
	c.text(top, left+1, " Robot ", robotStyle)
	c.put(top, sensorCol, '◆', rayStyle)

	if t.hasRay {
		label := fmt.Sprintf("heading: %d°", t.headingDeg)
		c.text(bottom+1, sensorCol-len([]rune(label))/2, label, headingStyle)
	}

	if t.hasDriveSpeed && math.Abs(t.driveSpeed) > 1e-9 {
		center := top + robotHeight/2
		dir, head, style := -1, '▲', forwardStyle
		if t.driveSpeed < 0 {
			dir, head, style = 1, '▼', headingStyle
		}
		n := max(1, min(arrowRows, int(math.Ceil(math.Abs(t.driveSpeed)*arrowRows))))
		for i := 0; i < n; i++ {
			c.put(center+dir*i, sensorCol, '┃', style)
		}
		tip := center + dir*n
		c.put(tip, sensorCol, head, style)
		c.text(tip, sensorCol+2, fmt.Sprintf("%.3f", t.driveSpeed), style)
	}
	return &c
}
