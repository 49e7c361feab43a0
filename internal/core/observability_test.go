package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcore/pkg/domain"
)

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) last() AuditEntry {
	return c.entries[len(c.entries)-1]
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls      []metricsCall
	violations []domain.Violation
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) ObserveViolations(_ context.Context, res domain.Result) {
	c.violations = append(c.violations, res.Violations...)
}

type spanRecord struct {
	op  string
	err error
}

type captureTracer struct {
	ended []spanRecord
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, &captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s *captureSpan) End(err error) {
	s.tracer.ended = append(s.tracer.ended, spanRecord{op: s.op, err: err})
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) ClockFunc {
	now := testNow
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestServiceReportsEveryOperation(t *testing.T) {
	ctx := context.Background()
	audit := &captureAuditRecorder{}
	metrics := &captureMetricsRecorder{}
	tracer := &captureTracer{}
	svc := NewInMemoryService(nil,
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithClock(steppingClock(time.Second)),
	)

	h, _, err := svc.CreateHospital(ctx, newHospital(t, "Hospital San Martín Central"))
	require.NoError(t, err)
	entry := audit.last()
	assert.Equal(t, "create_hospital", entry.Operation)
	assert.Equal(t, domain.EntityHospital, entry.Entity)
	assert.Equal(t, domain.ActionCreate, entry.Action)
	assert.Equal(t, h.ID(), entry.EntityID)
	assert.Equal(t, AuditStatusSuccess, entry.Status)
	assert.Equal(t, time.Second, entry.Duration)

	_, err = svc.DeleteDepartment(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	entry = audit.last()
	assert.Equal(t, "delete_department", entry.Operation)
	assert.Equal(t, domain.ActionDelete, entry.Action)
	assert.Equal(t, domain.ID("missing"), entry.EntityID)
	assert.Equal(t, AuditStatusError, entry.Status)
	assert.Contains(t, entry.Error, "not found")

	assert.Equal(t, []metricsCall{{"create_hospital", true}, {"delete_department", false}}, metrics.calls)
	require.Len(t, tracer.ended, 2)
	assert.NoError(t, tracer.ended[0].err)
	assert.ErrorIs(t, tracer.ended[1].err, domain.ErrNotFound)
}

func TestServiceForwardsViolationsToMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetricsRecorder{}
	w := newWard(t, WithMetricsRecorder(metrics))

	_, _, err := w.svc.RegisterPhysician(ctx, newPhysician(t, "Lucía", "Rojas", "29555111", "MP-45678", domain.SpecialtyDermatology), w.dept.ID())
	require.Error(t, err)
	var rules []string
	for _, v := range metrics.violations {
		rules = append(rules, v.Rule)
	}
	assert.ElementsMatch(t, []string{RuleUniqueIdentity, RuleDepartmentSpecialty}, rules)
}

func TestServiceLogsTransactionsAndWarnings(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := newWard(t, WithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel)))
	require.Zero(t, buf.Len(), "successful commits log at debug")

	_, _, err := w.svc.RegisterPhysician(ctx, newPhysician(t, "Lucía", "Rojas", "29555111", "MP-334455", domain.SpecialtyDermatology), w.dept.ID())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"rule":"department_specialty"`)

	buf.Reset()
	_, err = w.svc.DeleteRoom(ctx, "missing")
	require.Error(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "warn", event["level"])
	assert.Equal(t, "delete_room", event["operation"])
	assert.Equal(t, "transaction", event["message"])
}

func TestLogAuditRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogAuditRecorder(zerolog.New(&buf))
	rec.Record(context.Background(), AuditEntry{Operation: "create_room", Entity: domain.EntityRoom, Action: domain.ActionCreate, EntityID: "r1", Status: AuditStatusSuccess})
	rec.Record(context.Background(), AuditEntry{Operation: "move_room", Status: AuditStatusError, Error: "room r2 not found"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "info", first["level"])
	assert.Equal(t, "audit", first["component"])
	assert.Equal(t, "r1", first["entity_id"])
	assert.Equal(t, "warn", second["level"])
	assert.Equal(t, "room r2 not found", second["error"])
}

func TestLogTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewLogTracer(zerolog.New(&buf), steppingClock(250*time.Millisecond))
	_, span := tracer.Start(context.Background(), "archive_snapshot")
	span.End(errors.New("bucket unavailable"))

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "span", event["message"])
	assert.Equal(t, "archive_snapshot", event["operation"])
	assert.Equal(t, "error", event["status"])
	assert.Equal(t, "bucket unavailable", event["error"])
	assert.InDelta(t, 250.0, event["duration"], 0.001)
}
