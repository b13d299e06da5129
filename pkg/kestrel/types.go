package kestrel

import (
	"github.com/aeroteameindhoven/kestrel/internal/app/worker"
	"github.com/aeroteameindhoven/kestrel/internal/domain"
	"github.com/aeroteameindhoven/kestrel/internal/ports"
)

// Packet is what the worker hands to consumers: a metric or a system event.
type Packet = domain.Packet

// Metric is one decoded telemetry reading.
type Metric = domain.Metric

// MetricValue is a scalar, an array of scalars or an unrecognised tag with
// its raw bytes.
type MetricValue = domain.MetricValue

// MetricName is a namespaced metric name such as "ultrasonic:distance".
type MetricName = domain.MetricName

// Timestamp is the device clock in milliseconds since boot.
type Timestamp = domain.Timestamp

type (
	WorkerState  = domain.WorkerState
	SystemEvent  = domain.SystemEvent
	RobotCommand = domain.RobotCommand
)

// Controller is the handle to the running ingestion worker.
type Controller = worker.Controller

// Sink consumes batches of packets.
type Sink = ports.Sink

// Observability receives counters, gauges and histograms from the runtime.
type Observability = ports.Observability

// Opener opens the serial transport. Replace it to drive the runtime from a
// simulator.
type Opener = ports.Opener

// Transport is an open serial link.
type Transport = ports.Transport

const (
	StateDisconnected = domain.StateDisconnected
	StateConnected    = domain.StateConnected
	StateResetting    = domain.StateResetting
	StateDetached     = domain.StateDetached

	EventConnected    = domain.EventConnected
	EventDisconnected = domain.EventDisconnected

	CalibrateAmbientInfrared   = domain.CalibrateAmbientInfrared
	CalibrateReferenceInfrared = domain.CalibrateReferenceInfrared
)
