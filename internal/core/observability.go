package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/loggo"

	"recordhub/pkg/domain"
)

// Logger is the structured logging surface used by the service. Key-value
// pairs follow the message.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Clock supplies timestamps for records, events and audit entries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span around a service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

// AuditStatus reports whether an audited operation succeeded.
type AuditStatus string

const (
	// AuditStatusSuccess marks a completed operation.
	AuditStatusSuccess AuditStatus = "success"
	// AuditStatusError marks a failed operation.
	AuditStatusError AuditStatus = "error"
)

// AuditEntry describes one mutation attempt.
type AuditEntry struct {
	Operation string
	Entity    domain.EntityType
	Action    domain.Action
	EntityID  string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry for every audited operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the default loggo-backed logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder installs an audit recorder.
func WithAuditRecorder(a AuditRecorder) Option {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithIDGenerator overrides the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// loggoLogger writes through a juju/loggo module logger.
type loggoLogger struct {
	logger loggo.Logger
}

// NewLoggoLogger adapts a loggo logger to the Logger interface.
func NewLoggoLogger(l loggo.Logger) Logger {
	return loggoLogger{logger: l}
}

func (l loggoLogger) Debug(msg string, kv ...any) { l.logger.Debugf("%s", formatKV(msg, kv)) }
func (l loggoLogger) Info(msg string, kv ...any)  { l.logger.Infof("%s", formatKV(msg, kv)) }
func (l loggoLogger) Warn(msg string, kv ...any)  { l.logger.Warningf("%s", formatKV(msg, kv)) }
func (l loggoLogger) Error(msg string, kv ...any) { l.logger.Errorf("%s", formatKV(msg, kv)) }

func formatKV(msg string, kv []any) string {
	if len(kv) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
			continue
		}
		fmt.Fprintf(&b, "%v", kv[i])
	}
	return b.String()
}

// LoggoAuditRecorder writes one line per audited mutation.
type LoggoAuditRecorder struct {
	logger loggo.Logger
}

// NewLoggoAuditRecorder returns an AuditRecorder writing to l.
func NewLoggoAuditRecorder(l loggo.Logger) *LoggoAuditRecorder {
	return &LoggoAuditRecorder{logger: l}
}

// Record implements AuditRecorder. Failures are logged at warning level.
func (r *LoggoAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	line := formatKV("audit", []any{
		"operation", entry.Operation,
		"entity", entry.Entity,
		"action", entry.Action,
		"id", entry.EntityID,
		"status", entry.Status,
		"duration", entry.Duration,
	})
	if entry.Status == AuditStatusError {
		r.logger.Warningf("%s error=%q", line, entry.Error)
		return
	}
	r.logger.Infof("%s", line)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

type noopPublisher struct{}

func (noopPublisher) Publish(string, domain.ChangeEvent) {}

// wallClock adapts juju/clock so tests can substitute a testclock.
type wallClock struct {
	clock clock.Clock
}

func (c wallClock) Now() time.Time { return c.clock.Now() }
