// Package domain defines the persistent entities, value types, error
// taxonomy, and rule evaluation primitives of the reproductive lifecycle
// engine.
package domain

import (
	"time"
)

// EntityType identifies the kind of record stored by the engine.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityEstrusDetection identifies a heat detection record.
	EntityEstrusDetection EntityType = "estrus_detection"
	// EntityBreedingRecord identifies a logged breeding event.
	EntityBreedingRecord EntityType = "breeding_record"
	// EntityPregnancy identifies a tracked pregnancy.
	EntityPregnancy EntityType = "pregnancy"
	// EntityBirth identifies a birth event record.
	EntityBirth EntityType = "birth"
)

// EstrusStatus represents the canonical heat-detection lifecycle states.
type EstrusStatus string

// Estrus detection statuses. Detected and confirmed are the only
// non-terminal states.
const (
	EstrusDetected      EstrusStatus = "detected"
	EstrusConfirmed     EstrusStatus = "confirmed"
	EstrusBred          EstrusStatus = "bred"
	EstrusMissed        EstrusStatus = "missed"
	EstrusFalsePositive EstrusStatus = "false_positive"
)

// Terminal reports whether the status permits no further transitions.
func (s EstrusStatus) Terminal() bool {
	switch s {
	case EstrusBred, EstrusMissed, EstrusFalsePositive:
		return true
	}
	return false
}

// BreedingMethod enumerates how a breeding was performed.
type BreedingMethod string

// Supported breeding methods.
const (
	BreedingNatural                BreedingMethod = "natural"
	BreedingArtificialInsemination BreedingMethod = "artificial_insemination"
	BreedingEmbryoTransfer         BreedingMethod = "embryo_transfer"
)

// Valid reports whether the method is one of the supported values.
func (m BreedingMethod) Valid() bool {
	switch m {
	case BreedingNatural, BreedingArtificialInsemination, BreedingEmbryoTransfer:
		return true
	}
	return false
}

// PregnancyStatus represents the pregnancy lifecycle states.
type PregnancyStatus string

// Pregnancy statuses. Active is the only non-terminal state.
const (
	PregnancyActive     PregnancyStatus = "active"
	PregnancyBirthed    PregnancyStatus = "birthed"
	PregnancyMiscarried PregnancyStatus = "miscarried"
	PregnancyCancelled  PregnancyStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s PregnancyStatus) Terminal() bool { return s != PregnancyActive }

// ConfirmationMethod enumerates how a pregnancy was confirmed.
type ConfirmationMethod string

// Supported confirmation methods.
const (
	ConfirmManual      ConfirmationMethod = "manual"
	ConfirmUltrasound  ConfirmationMethod = "ultrasound"
	ConfirmBloodTest   ConfirmationMethod = "blood_test"
	ConfirmObservation ConfirmationMethod = "observation"
)

// Valid reports whether the method is one of the supported values.
func (m ConfirmationMethod) Valid() bool {
	switch m {
	case ConfirmManual, ConfirmUltrasound, ConfirmBloodTest, ConfirmObservation:
		return true
	}
	return false
}

// BirthType enumerates delivery categories.
type BirthType string

// Supported birth types.
const (
	BirthNormal   BirthType = "normal"
	BirthAssisted BirthType = "assisted"
	BirthCesarean BirthType = "cesarean"
)

// Valid reports whether the birth type is one of the supported values.
func (t BirthType) Valid() bool {
	switch t {
	case BirthNormal, BirthAssisted, BirthCesarean:
		return true
	}
	return false
}

// Base contains common fields for all engine records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EstrusDetection records a detected heat event for a female animal. The
// animal itself is owned externally and referenced only by id.
type EstrusDetection struct {
	Base
	AnimalID   string             `json:"animal_id"`
	Species    string             `json:"species"`
	DetectedAt time.Time          `json:"detection_time"`
	Behaviors  map[string]float64 `json:"behaviors,omitempty"`
	Confidence float64            `json:"confidence"`
	// WindowStart and WindowEnd bracket the optimal breeding window derived
	// from the species heat-duration profile at creation time.
	WindowStart time.Time    `json:"optimal_breeding_start"`
	WindowEnd   time.Time    `json:"optimal_breeding_end"`
	Status      EstrusStatus `json:"status"`
	Notified    bool         `json:"notified"`
	Notes       *string      `json:"notes,omitempty"`
}

// BreedingRecord logs a breeding event, optionally linked back to the estrus
// detection that prompted it. Success stays nil until the outcome is known
// and never changes once set.
type BreedingRecord struct {
	Base
	FemaleID          string         `json:"female_id"`
	MaleID            *string        `json:"male_id,omitempty"`
	Species           string         `json:"species"`
	BredAt            time.Time      `json:"breeding_date"`
	Method            BreedingMethod `json:"breeding_method"`
	Technician        *string        `json:"technician,omitempty"`
	Batch             *string        `json:"batch,omitempty"`
	EstrusDetectionID *string        `json:"estrus_detection_id,omitempty"`
	Success           *bool          `json:"success"`
	PregnancyID       *string        `json:"pregnancy_id,omitempty"`
}

// Pregnancy tracks a gestation from breeding to outcome. ExpectedBirthDate is
// fixed at creation from the species gestation length; confirmation only
// flips the Confirmed flag.
type Pregnancy struct {
	Base
	AnimalID           string              `json:"animal_id"`
	SireID             *string             `json:"sire_id,omitempty"`
	Species            string              `json:"species"`
	BreedingDate       time.Time           `json:"breeding_date"`
	ExpectedBirthDate  time.Time           `json:"expected_birth_date"`
	ActualBirthDate    *time.Time          `json:"actual_birth_date,omitempty"`
	Method             BreedingMethod      `json:"breeding_method"`
	Confirmed          bool                `json:"pregnancy_confirmed"`
	ConfirmedAt        *time.Time          `json:"confirmation_date,omitempty"`
	ConfirmationMethod *ConfirmationMethod `json:"confirmation_method,omitempty"`
	BreedingRecordID   *string             `json:"breeding_record_id,omitempty"`
	Status             PregnancyStatus     `json:"status"`
	Notes              *string             `json:"notes,omitempty"`
}

// Birth records a birth event. Immutable after creation except corrective
// note edits. PregnancyID is nulled, never cascaded, when the referenced
// pregnancy is purged.
type Birth struct {
	Base
	MotherID       string     `json:"mother_id"`
	PregnancyID    *string    `json:"pregnancy_id,omitempty"`
	BirthDate      time.Time  `json:"birth_date"`
	OffspringCount int        `json:"offspring_count"`
	OffspringIDs   []string   `json:"offspring_ids,omitempty"`
	BirthType      BirthType  `json:"birth_type"`
	BirthWeight    *float64   `json:"birth_weight,omitempty"`
	Complications  *string    `json:"complications,omitempty"`
	VetAssisted    bool       `json:"vet_assisted"`
	VetName        *string    `json:"vet_name,omitempty"`
	AIPredictedAt  *time.Time `json:"ai_predicted_at,omitempty"`
	AIDetectedAt   *time.Time `json:"ai_detected_at,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// PredictionAccuracyHours derives |ai_detected_at - ai_predicted_at| in hours
// when both timestamps are present.
func (b Birth) PredictionAccuracyHours() *float64 {
	if b.AIPredictedAt == nil || b.AIDetectedAt == nil {
		return nil
	}
	hours := b.AIDetectedAt.Sub(*b.AIPredictedAt).Hours()
	if hours < 0 {
		hours = -hours
	}
	return &hours
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions captured for rule evaluation and auditing.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
