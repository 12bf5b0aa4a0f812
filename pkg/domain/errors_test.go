package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRetryable(t *testing.T) {
	unavailable := StorageUnavailableError{Op: "commit snapshot", Timeout: time.Second, Err: errors.New("timeout")}
	if !IsRetryable(unavailable) {
		t.Fatalf("StorageUnavailableError should be retryable")
	}
	if !IsRetryable(fmt.Errorf("persist: %w", unavailable)) {
		t.Fatalf("wrapped StorageUnavailableError should be retryable")
	}

	notRetryable := []error{
		ValidationError{Entity: EntityBirth, Field: "offspring_count"},
		InvalidTransitionError{Entity: EntityPregnancy, From: "birthed", To: "active"},
		ConfigurationError{Species: "llama"},
		ConsistencyError{Op: "record_birth"},
		NotFoundError{Entity: EntityPregnancy, ID: "missing"},
		errors.New("plain"),
	}
	for _, err := range notRetryable {
		if IsRetryable(err) {
			t.Errorf("%T should not be retryable", err)
		}
	}
}

func TestStorageUnavailableUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := StorageUnavailableError{Op: "ping", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected unwrap to reach cause")
	}
}

func TestResultHasBlocking(t *testing.T) {
	var r Result
	if r.HasBlocking() {
		t.Fatalf("empty result should not block")
	}
	r.Merge(Result{Violations: []Violation{{Rule: "x", Severity: SeverityWarn}}})
	if r.HasBlocking() {
		t.Fatalf("warn-only result should not block")
	}
	r.Merge(Result{Violations: []Violation{{Rule: "y", Severity: SeverityBlock}}})
	if !r.HasBlocking() {
		t.Fatalf("expected blocking after merge")
	}
	if len(r.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(r.Violations))
	}
}

func TestEstrusStatusTerminal(t *testing.T) {
	terminal := []EstrusStatus{EstrusBred, EstrusMissed, EstrusFalsePositive}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []EstrusStatus{EstrusDetected, EstrusConfirmed} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestPregnancyStatusTerminal(t *testing.T) {
	if PregnancyActive.Terminal() {
		t.Fatalf("active should not be terminal")
	}
	for _, s := range []PregnancyStatus{PregnancyBirthed, PregnancyMiscarried, PregnancyCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestPredictionAccuracyHours(t *testing.T) {
	if (Birth{}).PredictionAccuracyHours() != nil {
		t.Fatalf("expected nil accuracy without AI timestamps")
	}
	predicted := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	detected := predicted.Add(-6 * time.Hour)
	b := Birth{AIPredictedAt: &predicted, AIDetectedAt: &detected}
	got := b.PredictionAccuracyHours()
	if got == nil || *got != 6 {
		t.Fatalf("accuracy = %v, want 6", got)
	}
}
