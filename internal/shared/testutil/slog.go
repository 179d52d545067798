package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// CapturedRecord is one log record captured by CaptureHandler.
type CapturedRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that records everything it receives.
type CaptureHandler struct {
	mu      sync.Mutex
	records []CapturedRecord
}

// NewCaptureLogger returns a logger and the handler capturing its output.
func NewCaptureLogger() (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{}
	return slog.New(h), h
}

func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	h.records = append(h.records, CapturedRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.mu.Unlock()
	return nil
}

func (h *CaptureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *CaptureHandler) WithGroup(string) slog.Handler      { return h }

// Records returns a copy of the captured records.
func (h *CaptureHandler) Records() []CapturedRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]CapturedRecord, len(h.records))
	copy(out, h.records)
	return out
}

// HasMessage reports whether any record carries the given message.
func (h *CaptureHandler) HasMessage(msg string) bool {
	for _, r := range h.Records() {
		if r.Message == msg {
			return true
		}
	}
	return false
}
