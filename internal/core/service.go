// Package core implements the reproductive lifecycle engine: the service
// facade over the persistent store, the rules engine, the temporal sweep, and
// the aggregate reporting views.
package core

import (
	"context"
	"strings"
	"time"

	"herdcore/pkg/domain"
	"herdcore/pkg/schedule"
)

// Engine-level defaults applied when Config leaves the field zero.
const (
	// DefaultConfirmThreshold auto-confirms detections at or above this
	// confidence.
	DefaultConfirmThreshold = 0.8
	// DefaultGracePeriod extends the breeding window before a detection is
	// swept to missed.
	DefaultGracePeriod = 72 * time.Hour
)

// Archiver receives records about to be purged so they can be retained
// outside the live store.
type Archiver interface {
	ArchiveEstrusDetection(ctx context.Context, detection EstrusDetection) error
	ArchivePregnancy(ctx context.Context, pregnancy Pregnancy) error
}

// Config carries the deployment-level settings of the engine.
type Config struct {
	// Profiles resolves species to reproduction constants. Required.
	Profiles schedule.Table
	// ConfirmThreshold auto-confirms detections at or above this confidence.
	ConfirmThreshold float64
	// GracePeriod extends the breeding window before sweep marks a
	// detection missed.
	GracePeriod time.Duration
	// DueSoonDays is the reporting threshold for due-soon pregnancies.
	DueSoonDays int
}

func (c Config) confirmThreshold() float64 {
	if c.ConfirmThreshold <= 0 {
		return DefaultConfirmThreshold
	}
	return c.ConfirmThreshold
}

func (c Config) gracePeriod() time.Duration {
	if c.GracePeriod <= 0 {
		return DefaultGracePeriod
	}
	return c.GracePeriod
}

func (c Config) dueSoonDays() int {
	if c.DueSoonDays <= 0 {
		return schedule.DefaultDueSoonDays
	}
	return c.DueSoonDays
}

// Service exposes the lifecycle operations over a persistent store. All
// mutations run inside store transactions so rule evaluation and multi-record
// updates commit atomically.
type Service struct {
	store    domain.PersistentStore
	cfg      Config
	clock    Clock
	logger   Logger
	audit    AuditRecorder
	metrics  MetricsRecorder
	tracer   Tracer
	archiver Archiver
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger installs a structured logger. Defaults to a no-op logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for stamping and sweeping.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithAuditRecorder installs an audit sink for completed operations.
func WithAuditRecorder(r AuditRecorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.audit = r
		}
	}
}

// WithMetricsRecorder installs a metrics sink for operation outcomes.
func WithMetricsRecorder(r MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithTracer installs a tracer around operations.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithArchiver installs the purge archiver. Without one, purges delete
// without retention.
func WithArchiver(a Archiver) ServiceOption {
	return func(s *Service) {
		if a != nil {
			s.archiver = a
		}
	}
}

type nowFuncSetter interface {
	SetNowFunc(func() time.Time)
}

// NewService wires a service over the store. When the store accepts a clock
// override, the service clock is pushed down so record timestamps and sweep
// decisions agree.
func NewService(store domain.PersistentStore, cfg Config, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		cfg:     cfg,
		clock:   ClockFunc(nil),
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if setter, ok := store.(nowFuncSetter); ok {
		setter.SetNowFunc(s.clock.Now)
	}
	return s
}

// Store exposes the underlying persistent store for read-side helpers.
func (s *Service) Store() domain.PersistentStore { return s.store }

// EstrusDetectionInput carries the caller-supplied fields of a detection.
type EstrusDetectionInput struct {
	AnimalID   string
	Species    string
	DetectedAt time.Time
	Behaviors  map[string]float64
	Confidence float64
	Notes      *string
}

// RecordEstrusDetection registers a heat detection, derives the optimal
// breeding window from the species profile, and auto-confirms when the
// confidence clears the configured threshold.
func (s *Service) RecordEstrusDetection(ctx context.Context, input EstrusDetectionInput) (EstrusDetection, Result, error) {
	var (
		created EstrusDetection
		result  Result
	)
	err := s.instrument(ctx, "record_estrus_detection", func(ctx context.Context) error {
		profile, err := s.cfg.Profiles.Lookup(input.Species)
		if err != nil {
			return err
		}
		detectedAt := input.DetectedAt
		if detectedAt.IsZero() {
			detectedAt = s.clock.Now()
		}
		detectedAt = detectedAt.UTC()
		start, end := schedule.BreedingWindow(detectedAt, profile)
		status := EstrusDetected
		if input.Confidence >= s.cfg.confirmThreshold() {
			status = EstrusConfirmed
		}
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			detection, err := tx.CreateEstrusDetection(EstrusDetection{
				AnimalID:    input.AnimalID,
				Species:     input.Species,
				DetectedAt:  detectedAt,
				Behaviors:   input.Behaviors,
				Confidence:  input.Confidence,
				WindowStart: start,
				WindowEnd:   end,
				Status:      status,
				Notes:       input.Notes,
			})
			if err != nil {
				return err
			}
			created = detection
			return nil
		})
		return err
	}, func() string { return created.ID })
	return created, result, err
}

// ConfirmEstrus moves a detection from detected to confirmed.
func (s *Service) ConfirmEstrus(ctx context.Context, id string) (EstrusDetection, Result, error) {
	return s.transitionEstrus(ctx, "confirm_estrus", id, EstrusConfirmed, nil)
}

// MarkFalsePositive closes a detection as a false alarm.
func (s *Service) MarkFalsePositive(ctx context.Context, id string, notes *string) (EstrusDetection, Result, error) {
	return s.transitionEstrus(ctx, "mark_false_positive", id, EstrusFalsePositive, notes)
}

func (s *Service) transitionEstrus(ctx context.Context, operation, id string, target EstrusStatus, notes *string) (EstrusDetection, Result, error) {
	var (
		updated EstrusDetection
		result  Result
	)
	err := s.instrument(ctx, operation, func(ctx context.Context) error {
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			current, ok := tx.FindEstrusDetection(id)
			if !ok {
				return domain.NotFoundError{Entity: EntityEstrusDetection, ID: id}
			}
			if _, allowed := estrusTransitions[current.Status][target]; !allowed {
				return domain.InvalidTransitionError{
					Entity:   EntityEstrusDetection,
					EntityID: id,
					From:     string(current.Status),
					To:       string(target),
				}
			}
			updated, err = tx.UpdateEstrusDetection(id, func(d *EstrusDetection) error {
				d.Status = target
				if notes != nil {
					d.Notes = notes
				}
				return nil
			})
			return err
		})
		return err
	}, func() string { return id })
	return updated, result, err
}

// MarkEstrusNotified flags a detection as alerted so notification pipelines
// do not re-fire. Idempotent.
func (s *Service) MarkEstrusNotified(ctx context.Context, id string) (EstrusDetection, Result, error) {
	var (
		updated EstrusDetection
		result  Result
	)
	err := s.instrument(ctx, "mark_estrus_notified", func(ctx context.Context) error {
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if _, ok := tx.FindEstrusDetection(id); !ok {
				return domain.NotFoundError{Entity: EntityEstrusDetection, ID: id}
			}
			updated, err = tx.UpdateEstrusDetection(id, func(d *EstrusDetection) error {
				d.Notified = true
				return nil
			})
			return err
		})
		return err
	}, func() string { return id })
	return updated, result, err
}

// PurgeEstrusDetection archives and removes a closed detection. Detections
// still in a non-terminal state cannot be purged.
func (s *Service) PurgeEstrusDetection(ctx context.Context, id string) (Result, error) {
	var result Result
	err := s.instrument(ctx, "purge_estrus_detection", func(ctx context.Context) error {
		detection, ok := s.store.GetEstrusDetection(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityEstrusDetection, ID: id}
		}
		if !detection.Status.Terminal() {
			return domain.ValidationError{
				Entity:   EntityEstrusDetection,
				EntityID: id,
				Field:    "status",
				Rule:     "purge_terminal_only",
				Message:  "only closed detections can be purged",
			}
		}
		if s.archiver != nil {
			if err := s.archiver.ArchiveEstrusDetection(ctx, detection); err != nil {
				return err
			}
		}
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if _, ok := tx.FindEstrusDetection(id); !ok {
				return domain.NotFoundError{Entity: EntityEstrusDetection, ID: id}
			}
			return tx.DeleteEstrusDetection(id)
		})
		return err
	}, func() string { return id })
	return result, err
}

// BreedingInput carries the caller-supplied fields of a breeding event.
type BreedingInput struct {
	FemaleID          string
	MaleID            *string
	Species           string
	BredAt            time.Time
	Method            BreedingMethod
	Technician        *string
	Batch             *string
	EstrusDetectionID *string
}

// RecordBreeding logs a breeding event. When linked to an estrus detection
// the breeding time must fall inside the detection's optimal window extended
// by the grace period, and the detection moves to bred in the same
// transaction.
func (s *Service) RecordBreeding(ctx context.Context, input BreedingInput) (BreedingRecord, Result, error) {
	var (
		created BreedingRecord
		result  Result
	)
	err := s.instrument(ctx, "record_breeding", func(ctx context.Context) error {
		// The non-return sweep resolves this record later via the species
		// profile, so an unresolvable species is rejected up front.
		if _, err := s.cfg.Profiles.Lookup(input.Species); err != nil {
			return err
		}
		bredAt := input.BredAt
		if bredAt.IsZero() {
			bredAt = s.clock.Now()
		}
		bredAt = bredAt.UTC()
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if input.EstrusDetectionID != nil {
				if err := s.linkDetection(tx, *input.EstrusDetectionID, input.FemaleID, bredAt); err != nil {
					return err
				}
			}
			created, err = tx.CreateBreedingRecord(BreedingRecord{
				FemaleID:          input.FemaleID,
				MaleID:            input.MaleID,
				Species:           input.Species,
				BredAt:            bredAt,
				Method:            input.Method,
				Technician:        input.Technician,
				Batch:             input.Batch,
				EstrusDetectionID: input.EstrusDetectionID,
			})
			return err
		})
		return err
	}, func() string { return created.ID })
	return created, result, err
}

func (s *Service) linkDetection(tx domain.Transaction, detectionID, femaleID string, bredAt time.Time) error {
	detection, ok := tx.FindEstrusDetection(detectionID)
	if !ok {
		return domain.NotFoundError{Entity: EntityEstrusDetection, ID: detectionID}
	}
	if detection.AnimalID != femaleID {
		return domain.ValidationError{
			Entity:   EntityBreedingRecord,
			Field:    "estrus_detection_id",
			Rule:     "animal_match",
			Message:  "linked detection belongs to a different animal",
			EntityID: detectionID,
		}
	}
	if detection.Status.Terminal() {
		return domain.InvalidTransitionError{
			Entity:   EntityEstrusDetection,
			EntityID: detectionID,
			From:     string(detection.Status),
			To:       string(EstrusBred),
		}
	}
	// Only confirmed detections can back a breeding; a raw detection must be
	// confirmed first.
	if detection.Status != EstrusConfirmed && detection.Status != EstrusBred {
		return domain.ValidationError{
			Entity:   EntityBreedingRecord,
			Field:    "estrus_detection_id",
			Rule:     "linkable_status",
			Message:  "linked detection must be confirmed or bred",
			EntityID: detectionID,
		}
	}
	deadline := detection.WindowEnd.Add(s.cfg.gracePeriod())
	if bredAt.Before(detection.WindowStart) || bredAt.After(deadline) {
		return domain.ValidationError{
			Entity:   EntityBreedingRecord,
			Field:    "breeding_date",
			Rule:     "within_breeding_window",
			Message:  "breeding time falls outside the detection's optimal window",
			EntityID: detectionID,
		}
	}
	if detection.Status == EstrusBred {
		return nil
	}
	_, err := tx.UpdateEstrusDetection(detectionID, func(d *EstrusDetection) error {
		d.Status = EstrusBred
		return nil
	})
	return err
}

// PregnancyInput carries the fields needed to confirm a pregnancy. When
// BreedingRecordID is set, animal, species, and breeding date come from the
// record; otherwise they must be supplied directly.
type PregnancyInput struct {
	BreedingRecordID *string
	AnimalID         string
	SireID           *string
	Species          string
	BreedingDate     time.Time
	Method           BreedingMethod
	Confirmation     ConfirmationMethod
	Notes            *string
}

// ConfirmPregnancy creates a confirmed, active pregnancy with its expected
// birth date fixed from the species gestation length. When a breeding record
// is referenced, the record's outcome and pregnancy link are set in the same
// transaction.
func (s *Service) ConfirmPregnancy(ctx context.Context, input PregnancyInput) (Pregnancy, Result, error) {
	var (
		created Pregnancy
		result  Result
	)
	err := s.instrument(ctx, "confirm_pregnancy", func(ctx context.Context) error {
		if !input.Confirmation.Valid() {
			return domain.ValidationError{
				Entity:  EntityPregnancy,
				Field:   "confirmation_method",
				Rule:    "enum",
				Message: "unknown confirmation method",
			}
		}
		now := s.clock.Now()
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			seed := Pregnancy{
				AnimalID:     input.AnimalID,
				SireID:       input.SireID,
				Species:      input.Species,
				BreedingDate: input.BreedingDate.UTC(),
				Method:       input.Method,
			}
			if input.BreedingRecordID != nil {
				record, ok := tx.FindBreedingRecord(*input.BreedingRecordID)
				if !ok {
					return domain.NotFoundError{Entity: EntityBreedingRecord, ID: *input.BreedingRecordID}
				}
				if record.PregnancyID != nil {
					return domain.ValidationError{
						Entity:   EntityBreedingRecord,
						EntityID: record.ID,
						Field:    "pregnancy_id",
						Rule:     "single_pregnancy",
						Message:  "breeding record is already linked to a pregnancy",
					}
				}
				if record.Success != nil && !*record.Success {
					return domain.InvalidTransitionError{
						Entity:   EntityBreedingRecord,
						EntityID: record.ID,
						From:     "failed",
						To:       "confirmed",
					}
				}
				seed.AnimalID = record.FemaleID
				seed.SireID = record.MaleID
				seed.Species = record.Species
				seed.BreedingDate = record.BredAt
				seed.Method = record.Method
				seed.BreedingRecordID = input.BreedingRecordID
			}
			profile, err := s.cfg.Profiles.Lookup(seed.Species)
			if err != nil {
				return err
			}
			confirmation := input.Confirmation
			seed.ExpectedBirthDate = schedule.DueDate(seed.BreedingDate, profile)
			seed.Confirmed = true
			seed.ConfirmedAt = &now
			seed.ConfirmationMethod = &confirmation
			seed.Status = PregnancyActive
			seed.Notes = input.Notes

			created, err = tx.CreatePregnancy(seed)
			if err != nil {
				return err
			}
			if seed.BreedingRecordID != nil {
				success := true
				if _, err := tx.UpdateBreedingRecord(*seed.BreedingRecordID, func(r *BreedingRecord) error {
					r.Success = &success
					r.PregnancyID = &created.ID
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		return err
	}, func() string { return created.ID })
	return created, result, err
}

// CancelPregnancy closes an active pregnancy as cancelled.
func (s *Service) CancelPregnancy(ctx context.Context, id string, notes *string) (Pregnancy, Result, error) {
	return s.closePregnancy(ctx, "cancel_pregnancy", id, PregnancyCancelled, notes)
}

// MarkMiscarried closes an active pregnancy as miscarried. A reason in notes
// is required.
func (s *Service) MarkMiscarried(ctx context.Context, id string, notes *string) (Pregnancy, Result, error) {
	return s.closePregnancy(ctx, "mark_miscarried", id, PregnancyMiscarried, notes)
}

func (s *Service) closePregnancy(ctx context.Context, operation, id string, target PregnancyStatus, notes *string) (Pregnancy, Result, error) {
	var (
		updated Pregnancy
		result  Result
	)
	err := s.instrument(ctx, operation, func(ctx context.Context) error {
		if target == PregnancyMiscarried && (notes == nil || strings.TrimSpace(*notes) == "") {
			return domain.ValidationError{
				Entity:   EntityPregnancy,
				EntityID: id,
				Field:    "notes",
				Rule:     "reason_required",
				Message:  "a reason is required to mark a pregnancy miscarried",
			}
		}
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			current, ok := tx.FindPregnancy(id)
			if !ok {
				return domain.NotFoundError{Entity: EntityPregnancy, ID: id}
			}
			if current.Status.Terminal() {
				return domain.InvalidTransitionError{
					Entity:   EntityPregnancy,
					EntityID: id,
					From:     string(current.Status),
					To:       string(target),
				}
			}
			updated, err = tx.UpdatePregnancy(id, func(p *Pregnancy) error {
				p.Status = target
				if notes != nil {
					p.Notes = notes
				}
				return nil
			})
			return err
		})
		return err
	}, func() string { return id })
	return updated, result, err
}

// DeletePregnancy archives and removes a closed pregnancy. Links from births
// and breeding records are nulled, never cascaded, in the same transaction.
// Active pregnancies must be closed first.
func (s *Service) DeletePregnancy(ctx context.Context, id string) (Result, error) {
	var result Result
	err := s.instrument(ctx, "delete_pregnancy", func(ctx context.Context) error {
		pregnancy, ok := s.store.GetPregnancy(id)
		if !ok {
			return domain.NotFoundError{Entity: EntityPregnancy, ID: id}
		}
		if !pregnancy.Status.Terminal() {
			return domain.ValidationError{
				Entity:   EntityPregnancy,
				EntityID: id,
				Field:    "status",
				Rule:     "delete_terminal_only",
				Message:  "only closed pregnancies can be deleted",
			}
		}
		if s.archiver != nil {
			if err := s.archiver.ArchivePregnancy(ctx, pregnancy); err != nil {
				return err
			}
		}
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			current, ok := tx.FindPregnancy(id)
			if !ok {
				return domain.NotFoundError{Entity: EntityPregnancy, ID: id}
			}
			if err := tx.DeletePregnancy(id); err != nil {
				return err
			}
			view := tx.Snapshot()
			for _, birth := range view.ListBirthsByMother(current.AnimalID) {
				if birth.PregnancyID == nil || *birth.PregnancyID != id {
					continue
				}
				if _, err := tx.UpdateBirth(birth.ID, func(b *Birth) error {
					b.PregnancyID = nil
					return nil
				}); err != nil {
					return err
				}
			}
			if current.BreedingRecordID != nil {
				if record, ok := tx.FindBreedingRecord(*current.BreedingRecordID); ok && record.PregnancyID != nil && *record.PregnancyID == id {
					if _, err := tx.UpdateBreedingRecord(record.ID, func(r *BreedingRecord) error {
						r.PregnancyID = nil
						return nil
					}); err != nil {
						return err
					}
				}
			}
			return nil
		})
		return err
	}, func() string { return id })
	return result, err
}

// BirthInput carries the caller-supplied fields of a birth event.
type BirthInput struct {
	MotherID       string
	PregnancyID    *string
	BirthDate      time.Time
	OffspringCount int
	OffspringIDs   []string
	BirthType      BirthType
	BirthWeight    *float64
	Complications  *string
	VetAssisted    bool
	VetName        *string
	AIPredictedAt  *time.Time
	AIDetectedAt   *time.Time
	Notes          *string
}

// RecordBirth registers a birth. When linked to a pregnancy, the birth
// record, the pregnancy closure, and the breeding record outcome commit as
// one transaction or not at all.
func (s *Service) RecordBirth(ctx context.Context, input BirthInput) (Birth, Result, error) {
	var (
		created Birth
		result  Result
	)
	err := s.instrument(ctx, "record_birth", func(ctx context.Context) error {
		birthDate := input.BirthDate
		if birthDate.IsZero() {
			birthDate = s.clock.Now()
		}
		birthDate = birthDate.UTC()
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if input.PregnancyID != nil {
				pregnancy, ok := tx.FindPregnancy(*input.PregnancyID)
				if !ok {
					return domain.NotFoundError{Entity: EntityPregnancy, ID: *input.PregnancyID}
				}
				if pregnancy.AnimalID != input.MotherID {
					return domain.ValidationError{
						Entity:   EntityBirth,
						Field:    "pregnancy_id",
						Rule:     "animal_match",
						Message:  "linked pregnancy belongs to a different animal",
						EntityID: *input.PregnancyID,
					}
				}
				if pregnancy.Status.Terminal() {
					return domain.InvalidTransitionError{
						Entity:   EntityPregnancy,
						EntityID: pregnancy.ID,
						From:     string(pregnancy.Status),
						To:       string(PregnancyBirthed),
					}
				}
			}
			created, err = tx.CreateBirth(Birth{
				MotherID:       input.MotherID,
				PregnancyID:    input.PregnancyID,
				BirthDate:      birthDate,
				OffspringCount: input.OffspringCount,
				OffspringIDs:   input.OffspringIDs,
				BirthType:      input.BirthType,
				BirthWeight:    input.BirthWeight,
				Complications:  input.Complications,
				VetAssisted:    input.VetAssisted,
				VetName:        input.VetName,
				AIPredictedAt:  input.AIPredictedAt,
				AIDetectedAt:   input.AIDetectedAt,
				Notes:          input.Notes,
			})
			if err != nil {
				return err
			}
			if input.PregnancyID == nil {
				return nil
			}
			pregnancy, err := tx.UpdatePregnancy(*input.PregnancyID, func(p *Pregnancy) error {
				p.Status = PregnancyBirthed
				p.ActualBirthDate = &birthDate
				return nil
			})
			if err != nil {
				return err
			}
			if pregnancy.BreedingRecordID == nil {
				return nil
			}
			record, ok := tx.FindBreedingRecord(*pregnancy.BreedingRecordID)
			if !ok {
				return domain.ConsistencyError{
					Op:      "record_birth",
					Message: "pregnancy references a breeding record that no longer exists",
				}
			}
			if record.Success == nil {
				success := true
				if _, err := tx.UpdateBreedingRecord(record.ID, func(r *BreedingRecord) error {
					r.Success = &success
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		return err
	}, func() string { return created.ID })
	return created, result, err
}

// AmendBirthNotes replaces the corrective notes on a birth record. All other
// birth fields are immutable after creation.
func (s *Service) AmendBirthNotes(ctx context.Context, id string, notes *string) (Birth, Result, error) {
	var (
		updated Birth
		result  Result
	)
	err := s.instrument(ctx, "amend_birth_notes", func(ctx context.Context) error {
		var err error
		result, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if _, ok := tx.FindBirth(id); !ok {
				return domain.NotFoundError{Entity: EntityBirth, ID: id}
			}
			updated, err = tx.UpdateBirth(id, func(b *Birth) error {
				b.Notes = notes
				return nil
			})
			return err
		})
		return err
	}, func() string { return id })
	return updated, result, err
}

// GetEstrusDetection fetches a detection by id.
func (s *Service) GetEstrusDetection(id string) (EstrusDetection, error) {
	detection, ok := s.store.GetEstrusDetection(id)
	if !ok {
		return EstrusDetection{}, domain.NotFoundError{Entity: EntityEstrusDetection, ID: id}
	}
	return detection, nil
}

// GetBreedingRecord fetches a breeding record by id.
func (s *Service) GetBreedingRecord(id string) (BreedingRecord, error) {
	record, ok := s.store.GetBreedingRecord(id)
	if !ok {
		return BreedingRecord{}, domain.NotFoundError{Entity: EntityBreedingRecord, ID: id}
	}
	return record, nil
}

// GetPregnancy fetches a pregnancy by id.
func (s *Service) GetPregnancy(id string) (Pregnancy, error) {
	pregnancy, ok := s.store.GetPregnancy(id)
	if !ok {
		return Pregnancy{}, domain.NotFoundError{Entity: EntityPregnancy, ID: id}
	}
	return pregnancy, nil
}

// GetBirth fetches a birth record by id.
func (s *Service) GetBirth(id string) (Birth, error) {
	birth, ok := s.store.GetBirth(id)
	if !ok {
		return Birth{}, domain.NotFoundError{Entity: EntityBirth, ID: id}
	}
	return birth, nil
}
