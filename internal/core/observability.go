package core

import (
	"context"
	"time"
)

// Clock supplies the current time to service operations and the sweep. All
// timestamps are normalized to UTC.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface. A nil func falls back
// to the system clock.
type ClockFunc func() time.Time

// Now returns the function's time in UTC, or the system time when nil.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// Logger is the minimal structured logging surface used by the service.
// Message plus alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus marks an audit entry as a success or failure outcome.
type AuditStatus string

// Audit entry outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed service operation for the audit trail.
type AuditEntry struct {
	Operation string        `json:"operation"`
	Entity    EntityType    `json:"entity"`
	Action    Action        `json:"action"`
	EntityID  string        `json:"entity_id,omitempty"`
	Status    AuditStatus   `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// AuditRecorder receives audit entries from instrumented operations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// MetricsRecorder observes operation outcomes and durations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan completes a traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// operationMeta maps an instrumented operation name to its audited entity and action.
type operationMeta struct {
	entity EntityType
	action Action
}

var operationMetadata = map[string]operationMeta{
	"record_estrus_detection": {entity: EntityEstrusDetection, action: ActionCreate},
	"confirm_estrus":          {entity: EntityEstrusDetection, action: ActionUpdate},
	"mark_false_positive":     {entity: EntityEstrusDetection, action: ActionUpdate},
	"mark_estrus_notified":    {entity: EntityEstrusDetection, action: ActionUpdate},
	"purge_estrus_detection":  {entity: EntityEstrusDetection, action: ActionDelete},
	"record_breeding":         {entity: EntityBreedingRecord, action: ActionCreate},
	"confirm_pregnancy":       {entity: EntityPregnancy, action: ActionCreate},
	"cancel_pregnancy":        {entity: EntityPregnancy, action: ActionUpdate},
	"mark_miscarried":         {entity: EntityPregnancy, action: ActionUpdate},
	"delete_pregnancy":        {entity: EntityPregnancy, action: ActionDelete},
	"record_birth":            {entity: EntityBirth, action: ActionCreate},
	"amend_birth_notes":       {entity: EntityBirth, action: ActionUpdate},
	"sweep":                   {entity: EntityEstrusDetection, action: ActionUpdate},
}

// instrument wraps a service operation with tracing, metrics, and audit
// recording. The entityID callback runs after fn so creations can report the
// assigned id.
func (s *Service) instrument(ctx context.Context, operation string, fn func(ctx context.Context) error, entityID func() string) error {
	spanCtx, span := s.tracer.Start(ctx, operation)
	started := s.clock.Now()
	err := fn(spanCtx)
	duration := s.clock.Now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)

	meta, ok := operationMetadata[operation]
	if !ok {
		return err
	}
	entry := AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if entityID != nil {
		entry.EntityID = entityID()
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
	return err
}
