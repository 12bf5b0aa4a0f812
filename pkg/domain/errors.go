package domain

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports a write that violates a data-model invariant. The
// offending entity, field, and rule are carried so callers can correct input.
type ValidationError struct {
	Entity   EntityType
	EntityID string
	Field    string
	Rule     string
	Message  string
}

func (e ValidationError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("%s validation failed: %s (%s): %s", e.Entity, e.Field, e.Rule, e.Message)
	}
	return fmt.Sprintf("%s %s validation failed: %s (%s): %s", e.Entity, e.EntityID, e.Field, e.Rule, e.Message)
}

// InvalidTransitionError reports a state change not permitted from the
// record's current state.
type InvalidTransitionError struct {
	Entity   EntityType
	EntityID string
	From     string
	To       string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s cannot transition from %s to %s", e.Entity, e.EntityID, e.From, e.To)
}

// ConfigurationError reports a missing or invalid species profile setting.
// Not retryable without fixing configuration.
type ConfigurationError struct {
	Species string
	Setting string
}

func (e ConfigurationError) Error() string {
	if e.Species == "" {
		return fmt.Sprintf("configuration missing: %s", e.Setting)
	}
	return fmt.Sprintf("species %q: configuration missing: %s", e.Species, e.Setting)
}

// StorageUnavailableError reports that the underlying persistence did not
// respond within its timeout. Retryable by the caller with backoff.
type StorageUnavailableError struct {
	Op      string
	Timeout time.Duration
	Err     error
}

func (e StorageUnavailableError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("storage unavailable during %s (timeout %s): %v", e.Op, e.Timeout, e.Err)
	}
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e StorageUnavailableError) Unwrap() error { return e.Err }

// ConsistencyError reports that a multi-record update could not be completed
// as a unit. Fatal for the operation; never downgraded to a partial write.
type ConsistencyError struct {
	Op      string
	Message string
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation in %s: %s", e.Op, e.Message)
}

// NotFoundError reports a lookup for an id that is not present.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsRetryable reports whether the error indicates a transient storage
// condition the caller may retry with backoff.
func IsRetryable(err error) bool {
	var unavailable StorageUnavailableError
	return errors.As(err, &unavailable)
}
