package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"herdcore/internal/infra/persistence/memory"
)

type logLine struct {
	level string
	msg   string
	kv    []any
}

type captureLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (c *captureLogger) log(level, msg string, kv ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, logLine{level: level, msg: msg, kv: kv})
}

func (c *captureLogger) Debug(msg string, kv ...any) { c.log("debug", msg, kv...) }
func (c *captureLogger) Info(msg string, kv ...any)  { c.log("info", msg, kv...) }
func (c *captureLogger) Warn(msg string, kv ...any)  { c.log("warn", msg, kv...) }
func (c *captureLogger) Error(msg string, kv ...any) { c.log("error", msg, kv...) }

func (c *captureLogger) Lines() []logLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]logLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("expected generated expvar name")
	}
	ctx := context.Background()
	rec.Observe(ctx, "record_breeding", true, 10*time.Millisecond)
	rec.Observe(ctx, "record_breeding", true, 5*time.Millisecond)
	rec.Observe(ctx, "record_breeding", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Second) // ignored

	snap := rec.Snapshot()
	if got := snap.Results["record_breeding"]["success"]; got != 2 {
		t.Fatalf("success count = %d, want 2", got)
	}
	if got := snap.Results["record_breeding"]["error"]; got != 1 {
		t.Fatalf("error count = %d, want 1", got)
	}
	if got := snap.DurationsMS["record_breeding"]; got != 16 {
		t.Fatalf("duration total = %v ms, want 16", got)
	}
	if len(snap.Results) != 1 {
		t.Fatalf("unexpected operations recorded: %v", snap.Results)
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "confirm_pregnancy")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "record_birth")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Operation != "confirm_pregnancy" || entries[0].Status != "success" {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("second entry = %+v", entries[1])
	}

	dec := json.NewDecoder(&buf)
	var decoded []JSONTraceEntry
	for dec.More() {
		var e JSONTraceEntry
		if err := dec.Decode(&e); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		decoded = append(decoded, e)
	}
	if len(decoded) != 2 {
		t.Fatalf("serialized lines = %d, want 2", len(decoded))
	}
}

func TestLogAuditRecorderLevels(t *testing.T) {
	logger := &captureLogger{}
	rec := NewLogAuditRecorder(logger)

	rec.Record(context.Background(), AuditEntry{
		Operation: "record_breeding",
		Status:    AuditStatusSuccess,
	})
	rec.Record(context.Background(), AuditEntry{
		Operation: "record_birth",
		Status:    AuditStatusError,
		Error:     "pregnancy not found",
	})

	lines := logger.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].level != "info" || lines[0].msg != "audit" {
		t.Fatalf("success entry logged as %s %q", lines[0].level, lines[0].msg)
	}
	if lines[1].level != "warn" {
		t.Fatalf("error entry logged as %s", lines[1].level)
	}
}

func TestZapLoggerAdapts(t *testing.T) {
	zapCore, logs := observer.New(zap.InfoLevel)
	logger := NewZapLogger(zap.New(zapCore))

	logger.Info("sweep complete", "missed_estrus", 2)
	logger.Error("sweep pass failed", "error", "down")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	if entries[0].Message != "sweep complete" {
		t.Fatalf("message = %q", entries[0].Message)
	}
	fields := entries[0].ContextMap()
	if fields["missed_estrus"] != int64(2) {
		t.Fatalf("missed_estrus field = %v", fields["missed_estrus"])
	}
	if entries[1].Level != zap.ErrorLevel {
		t.Fatalf("level = %v", entries[1].Level)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusMetricsRecorder(reg)

	ctx := context.Background()
	rec.Observe(ctx, "record_estrus_detection", true, 3*time.Millisecond)
	rec.Observe(ctx, "record_estrus_detection", false, time.Millisecond)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("record_estrus_detection", "success")); got != 1 {
		t.Fatalf("success counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("record_estrus_detection", "error")); got != 1 {
		t.Fatalf("error counter = %v, want 1", got)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("metric families = %d, want counter and histogram", len(families))
	}
}

func TestSummaryCollectorExportsGauges(t *testing.T) {
	svc, _, _ := newTestService(t, testStart)
	if _, _, err := svc.RecordEstrusDetection(context.Background(), EstrusDetectionInput{
		AnimalID: "cow-1", Species: "cattle", DetectedAt: testStart, Confidence: 0.9,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(NewSummaryCollector(svc))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := make(map[string]float64, len(families))
	for _, fam := range families {
		values[fam.GetName()] = fam.GetMetric()[0].GetGauge().GetValue()
	}
	if values["herdcore_active_estrus"] != 1 {
		t.Fatalf("active estrus gauge = %v, want 1", values["herdcore_active_estrus"])
	}
	if values["herdcore_births_total"] != 0 {
		t.Fatalf("births gauge = %v, want 0", values["herdcore_births_total"])
	}
}

func TestInstrumentEmitsMetricsAndTraces(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	metrics := NewExpvarMetricsRecorder("")
	tracer := NewJSONTracer(nil)
	svc := NewService(store, Config{Profiles: testProfiles()},
		WithClock(newManualClock(testStart)),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
	)

	if _, _, err := svc.RecordEstrusDetection(context.Background(), EstrusDetectionInput{
		AnimalID: "cow-1", Species: "cattle", DetectedAt: testStart, Confidence: 0.9,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, _, err := svc.ConfirmEstrus(context.Background(), "missing"); err == nil {
		t.Fatalf("expected failure")
	}

	snap := metrics.Snapshot()
	if snap.Results["record_estrus_detection"]["success"] != 1 {
		t.Fatalf("metrics missing success: %v", snap.Results)
	}
	if snap.Results["confirm_estrus"]["error"] != 1 {
		t.Fatalf("metrics missing error: %v", snap.Results)
	}
	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("trace entries = %d, want 2", len(entries))
	}
	if entries[1].Operation != "confirm_estrus" || entries[1].Status != "error" {
		t.Fatalf("trace entry = %+v", entries[1])
	}
}
