package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"hospitalcore/pkg/domain"
)

// Clock supplies the current time to the service.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time { return f() }

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	ObserveViolations(ctx context.Context, res domain.Result)
}

// Tracer starts a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation's error.
type TraceSpan interface {
	End(err error)
}

// AuditStatus is the outcome recorded in an AuditEntry.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one mutating operation on the hospital graph.
type AuditEntry struct {
	Operation  string
	Entity     domain.EntityType
	Action     domain.Action
	EntityID   domain.ID
	Status     AuditStatus
	Error      string
	Violations int
	Duration   time.Duration
	Timestamp  time.Time
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (noopMetrics) ObserveViolations(context.Context, domain.Result)     {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

// LogAuditRecorder writes audit entries as structured log events.
type LogAuditRecorder struct {
	logger zerolog.Logger
}

// NewLogAuditRecorder tags every event with component=audit.
func NewLogAuditRecorder(logger zerolog.Logger) *LogAuditRecorder {
	return &LogAuditRecorder{logger: logger.With().Str("component", "audit").Logger()}
}

// Record emits entry at info level, or warn when the operation failed.
func (r *LogAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	event := r.logger.Info()
	if entry.Status == AuditStatusError {
		event = r.logger.Warn().Str("error", entry.Error)
	}
	event.
		Str("operation", entry.Operation).
		Str("entity", string(entry.Entity)).
		Str("action", string(entry.Action)).
		Str("entity_id", string(entry.EntityID)).
		Str("status", string(entry.Status)).
		Int("violations", entry.Violations).
		Dur("duration", entry.Duration).
		Time("at", entry.Timestamp).
		Msg("audit")
}

// LogTracer emits one debug event per finished span.
type LogTracer struct {
	logger zerolog.Logger
	clock  Clock
}

// NewLogTracer returns a tracer writing spans to logger. A nil clock uses
// the wall clock.
func NewLogTracer(logger zerolog.Logger, clock Clock) *LogTracer {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	return &LogTracer{logger: logger.With().Str("component", "trace").Logger(), clock: clock}
}

func (t *LogTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &logSpan{tracer: t, operation: operation, started: t.clock.Now()}
}

type logSpan struct {
	tracer    *LogTracer
	operation string
	started   time.Time
}

func (s *logSpan) End(err error) {
	ended := s.tracer.clock.Now()
	status := "success"
	if err != nil {
		status = "error"
	}
	s.tracer.logger.Debug().
		Str("operation", s.operation).
		Str("status", status).
		AnErr("error", err).
		Time("started_at", s.started).
		Dur("duration", ended.Sub(s.started)).
		Msg("span")
}
