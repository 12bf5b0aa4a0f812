package core

import (
	"context"
	"errors"
	"time"

	"herdcore/pkg/domain"
)

// DefaultSweepInterval paces the background sweep loop.
const DefaultSweepInterval = time.Hour

// SweepReport summarizes one sweep pass.
type SweepReport struct {
	MissedEstrus    int `json:"missed_estrus"`
	FailedBreedings int `json:"failed_breedings"`
	OverduePregnant int `json:"overdue_pregnancies"`
	Errors          int `json:"errors"`
}

// SweepOnce advances time-based state in a single pass: open detections past
// their window plus grace move to missed, and unresolved breedings past the
// species non-return window are marked failed. Each record is handled in its
// own transaction, so a failure on one record never blocks the rest, and
// records already advanced by a concurrent writer are skipped.
func (s *Service) SweepOnce(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	err := s.instrument(ctx, "sweep", func(ctx context.Context) error {
		now := s.clock.Now()
		grace := s.cfg.gracePeriod()

		for _, detection := range s.store.ListEstrusDetections() {
			if detection.Status.Terminal() {
				continue
			}
			if !now.After(detection.WindowEnd.Add(grace)) {
				continue
			}
			if err := s.sweepDetection(ctx, detection.ID, detection.WindowEnd.Add(grace), now); err != nil {
				report.Errors++
				s.logger.Warn("sweep: mark missed failed", "detection_id", detection.ID, "error", err)
				continue
			}
			report.MissedEstrus++
		}

		for _, record := range s.store.ListBreedingRecords() {
			if record.Success != nil {
				continue
			}
			profile, err := s.cfg.Profiles.Lookup(record.Species)
			if err != nil {
				report.Errors++
				s.logger.Warn("sweep: no profile for breeding record", "record_id", record.ID, "species", record.Species)
				continue
			}
			deadline := record.BredAt.Add(profile.ReturnWindow())
			if !now.After(deadline) {
				continue
			}
			if err := s.sweepBreeding(ctx, record.ID, deadline, now); err != nil {
				report.Errors++
				s.logger.Warn("sweep: mark failed breeding failed", "record_id", record.ID, "error", err)
				continue
			}
			report.FailedBreedings++
		}

		for _, pregnancy := range s.store.ListPregnancies() {
			if pregnancy.Status == PregnancyActive && now.After(pregnancy.ExpectedBirthDate) {
				report.OverduePregnant++
			}
		}
		if report.OverduePregnant > 0 {
			s.logger.Info("sweep: overdue pregnancies awaiting outcome", "count", report.OverduePregnant)
		}
		return nil
	}, nil)
	return report, err
}

// sweepDetection re-reads the detection inside the transaction so a racing
// writer who already advanced the status makes this a clean no-op.
func (s *Service) sweepDetection(ctx context.Context, id string, deadline, now time.Time) error {
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.FindEstrusDetection(id)
		if !ok || current.Status.Terminal() || !now.After(deadline) {
			return nil
		}
		_, err := tx.UpdateEstrusDetection(id, func(d *EstrusDetection) error {
			d.Status = EstrusMissed
			return nil
		})
		return err
	})
	return err
}

func (s *Service) sweepBreeding(ctx context.Context, id string, deadline, now time.Time) error {
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.FindBreedingRecord(id)
		if !ok || current.Success != nil || !now.After(deadline) {
			return nil
		}
		failed := false
		_, err := tx.UpdateBreedingRecord(id, func(r *BreedingRecord) error {
			r.Success = &failed
			return nil
		})
		return err
	})
	return err
}

// Sweeper runs SweepOnce on a fixed interval until its context is cancelled.
type Sweeper struct {
	service  *Service
	interval time.Duration
	logger   Logger
}

// NewSweeper constructs a sweeper over the service. A non-positive interval
// falls back to DefaultSweepInterval.
func NewSweeper(service *Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{service: service, interval: interval, logger: service.logger}
}

// Run blocks until ctx is cancelled, sweeping once per interval. The first
// sweep runs immediately.
func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		report, err := w.service.SweepOnce(ctx)
		switch {
		case err == nil:
			w.logger.Info("sweep complete",
				"missed_estrus", report.MissedEstrus,
				"failed_breedings", report.FailedBreedings,
				"overdue_pregnancies", report.OverduePregnant,
				"errors", report.Errors)
		case errors.Is(err, context.Canceled):
			return ctx.Err()
		default:
			w.logger.Error("sweep pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
