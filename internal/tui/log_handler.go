package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries a log record into the model for the status line.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

type logRecordFadeMsg struct{ seq int }

const logRecordFadeDelay = 5 * time.Second

// LogHandler is a slog.Handler that delivers records at or above its level
// to a bubbletea program, so warnings show in the status line instead of
// corrupting the alt screen. Records before SetProgram are dropped.
type LogHandler struct {
	level   slog.Level
	program *atomic.Pointer[tea.Program]
	attrs   []slog.Attr
}

func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{level: level, program: &atomic.Pointer[tea.Program]{}}
}

func (h *LogHandler) SetProgram(p *tea.Program) { h.program.Store(p) }

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *LogHandler) Handle(_ context.Context, record slog.Record) error {
	program := h.program.Load()
	if program == nil {
		return nil
	}
	var parts []string
	for _, a := range h.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Key, a.Value))
	}
	record.Attrs(func(a slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", a.Key, a.Value))
		return true
	})
	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	// Send blocks until the event loop takes the message.
	go program.Send(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

// WithGroup is flattened; the status line has no room for group prefixes.
func (h *LogHandler) WithGroup(string) slog.Handler { return h }

// FanoutHandler sends every record to all handlers that accept it.
type FanoutHandler []slog.Handler

func (f FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f FanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(FanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f FanoutHandler) WithGroup(name string) slog.Handler {
	out := make(FanoutHandler, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
