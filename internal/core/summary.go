package core

import (
	"context"
	"time"

	"herdcore/pkg/domain"
	"herdcore/pkg/schedule"
)

// Summary aggregates the live reproductive state of the herd. All counts are
// taken from a single consistent snapshot.
type Summary struct {
	ActiveEstrus      int `json:"active_estrus"`
	ActivePregnancies int `json:"active_pregnancies"`
	DueSoon           int `json:"due_soon"`
	PendingBreedings  int `json:"pending_breedings"`
	TotalBirths       int `json:"total_births"`
}

// DuePregnancy pairs an active pregnancy with its derived schedule position.
type DuePregnancy struct {
	Pregnancy     Pregnancy        `json:"pregnancy"`
	DaysRemaining int              `json:"days_remaining"`
	Urgency       schedule.Urgency `json:"urgency"`
}

// Summarize computes the herd summary as of the service clock. A zero
// birthsSince counts lifetime births; otherwise only births recorded on or
// after birthsSince count.
func (s *Service) Summarize(ctx context.Context, birthsSince time.Time) (Summary, error) {
	now := s.clock.Now()
	dueSoonDays := s.cfg.dueSoonDays()
	var summary Summary
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, detection := range view.ListEstrusDetections() {
			if !detection.Status.Terminal() {
				summary.ActiveEstrus++
			}
		}
		for _, pregnancy := range view.ListPregnancies() {
			if pregnancy.Status != PregnancyActive {
				continue
			}
			summary.ActivePregnancies++
			if schedule.DueSoon(pregnancy.ExpectedBirthDate, now, dueSoonDays) {
				summary.DueSoon++
			}
		}
		for _, record := range view.ListBreedingRecords() {
			if record.Success == nil {
				summary.PendingBreedings++
			}
		}
		for _, birth := range view.ListBirths() {
			if birthsSince.IsZero() || !birth.BirthDate.Before(birthsSince) {
				summary.TotalBirths++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// ListDueSoon returns active pregnancies due within withinDays, most recently
// created first, with days remaining and urgency derived as of the service
// clock. A non-positive withinDays falls back to the configured threshold.
// Overdue pregnancies are included with negative days.
func (s *Service) ListDueSoon(ctx context.Context, withinDays int) ([]DuePregnancy, error) {
	now := s.clock.Now()
	dueSoonDays := withinDays
	if dueSoonDays <= 0 {
		dueSoonDays = s.cfg.dueSoonDays()
	}
	var due []DuePregnancy
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, pregnancy := range view.ListPregnancies() {
			if pregnancy.Status != PregnancyActive {
				continue
			}
			if !schedule.DueSoon(pregnancy.ExpectedBirthDate, now, dueSoonDays) {
				continue
			}
			days := schedule.DaysRemaining(pregnancy.ExpectedBirthDate, now)
			due = append(due, DuePregnancy{
				Pregnancy:     pregnancy,
				DaysRemaining: days,
				Urgency:       schedule.Bucket(days),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return due, nil
}

// ListActiveEstrus returns detections still awaiting breeding, most recently
// created first.
func (s *Service) ListActiveEstrus(ctx context.Context) ([]EstrusDetection, error) {
	var active []EstrusDetection
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, detection := range view.ListEstrusDetections() {
			if !detection.Status.Terminal() {
				active = append(active, detection)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

// AnimalHistory collects every record referencing one animal.
type AnimalHistory struct {
	Detections  []EstrusDetection `json:"detections"`
	Breedings   []BreedingRecord  `json:"breedings"`
	Pregnancies []Pregnancy       `json:"pregnancies"`
	Births      []Birth           `json:"births"`
}

// HistoryByAnimal returns the full reproductive history of one animal from a
// single snapshot.
func (s *Service) HistoryByAnimal(ctx context.Context, animalID string) (AnimalHistory, error) {
	var history AnimalHistory
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		history.Detections = view.ListEstrusDetectionsByAnimal(animalID)
		history.Breedings = view.ListBreedingRecordsByFemale(animalID)
		history.Pregnancies = view.ListPregnanciesByAnimal(animalID)
		history.Births = view.ListBirthsByMother(animalID)
		return nil
	})
	if err != nil {
		return AnimalHistory{}, err
	}
	return history, nil
}
