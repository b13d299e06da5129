package domain

import (
	"fmt"
	"strings"
	"time"
)

// Metric is one decoded telemetry reading.
type Metric struct {
	Timestamp Timestamp
	Name      MetricName
	Value     MetricValue
}

func (m Metric) String() string {
	return fmt.Sprintf("%s %s: %s = %s", m.Timestamp, m.Name, m.Value.Type(), m.Value)
}

// SystemEvent is a host-side event interleaved with telemetry.
type SystemEvent uint8

const (
	EventConnected SystemEvent = iota + 1
	EventDisconnected
)

func (e SystemEvent) String() string {
	switch e {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// PacketKind discriminates Packet.
type PacketKind uint8

const (
	PacketTelemetry PacketKind = iota + 1
	PacketSystem
)

// Packet is what the worker hands to the consumer: either a telemetry
// metric or a system event, stamped with the host receive time.
type Packet struct {
	Kind       PacketKind
	Metric     Metric
	Event      SystemEvent
	ReceivedAt time.Time
}

func TelemetryPacket(m Metric, at time.Time) Packet {
	return Packet{Kind: PacketTelemetry, Metric: m, ReceivedAt: at}
}

func SystemPacket(e SystemEvent, at time.Time) Packet {
	return Packet{Kind: PacketSystem, Event: e, ReceivedAt: at}
}

func (p Packet) IsTelemetry() bool { return p.Kind == PacketTelemetry }

// WorkerState is the ingestion worker's connection state.
type WorkerState uint8

const (
	StateDisconnected WorkerState = iota
	StateConnected
	StateResetting
	StateDetached
)

func (s WorkerState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateResetting:
		return "resetting"
	case StateDetached:
		return "detached"
	default:
		return "unknown"
	}
}

// RobotCommand is a single-byte command understood by the device firmware.
type RobotCommand uint8

const (
	CalibrateAmbientInfrared   RobotCommand = 0x00
	CalibrateReferenceInfrared RobotCommand = 0x01
)

// Byte is the wire encoding of the command.
func (c RobotCommand) Byte() byte { return byte(c) }

func (c RobotCommand) String() string {
	switch c {
	case CalibrateAmbientInfrared:
		return "calibrate-ambient-infrared"
	case CalibrateReferenceInfrared:
		return "calibrate-reference-infrared"
	default:
		return fmt.Sprintf("command(0x%02x)", byte(c))
	}
}

// RobotCommands lists the known commands.
func RobotCommands() []RobotCommand {
	return []RobotCommand{CalibrateAmbientInfrared, CalibrateReferenceInfrared}
}

// ParseRobotCommand accepts the command name, case-insensitively.
func ParseRobotCommand(s string) (RobotCommand, error) {
	for _, c := range RobotCommands() {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown robot command %q", s)
}
