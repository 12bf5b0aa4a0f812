package core

import (
	"context"
	"fmt"

	"herdcore/pkg/domain"
)

// RecordLinkRule enforces cross-record consistency that single-entity
// validation cannot see: outcome immutability on breeding records, the fixed
// expected birth date, and the birthed/actual-birth-date pairing.
type RecordLinkRule struct{}

// Name identifies the rule in violation reports.
func (RecordLinkRule) Name() string { return "record_link_consistency" }

// Evaluate inspects the full change set of a transaction.
func (r RecordLinkRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	var result Result
	for _, change := range changes {
		switch change.Entity {
		case EntityBreedingRecord:
			if change.Action != ActionUpdate {
				continue
			}
			before, okB := change.Before.(BreedingRecord)
			after, okA := change.After.(BreedingRecord)
			if !okB || !okA {
				continue
			}
			result.Merge(r.checkBreeding(before, after, changes))
		case EntityPregnancy:
			if change.Action != ActionUpdate {
				continue
			}
			before, okB := change.Before.(Pregnancy)
			after, okA := change.After.(Pregnancy)
			if !okB || !okA {
				continue
			}
			result.Merge(r.checkPregnancy(before, after))
		case EntityBirth:
			if change.Action != ActionUpdate {
				continue
			}
			before, okB := change.Before.(Birth)
			after, okA := change.After.(Birth)
			if !okB || !okA {
				continue
			}
			result.Merge(r.checkBirth(before, after, changes))
		}
	}
	return result, nil
}

func (r RecordLinkRule) checkBreeding(before, after BreedingRecord, changes []Change) Result {
	var result Result
	if before.Success != nil && (after.Success == nil || *after.Success != *before.Success) {
		result.Violations = append(result.Violations, Violation{
			Rule:     r.Name(),
			Severity: SeverityBlock,
			Message:  "breeding outcome is immutable once recorded",
			Entity:   EntityBreedingRecord,
			EntityID: after.ID,
		})
	}
	if before.PregnancyID != nil {
		switch {
		case after.PregnancyID == nil:
			// Unlinking is permitted only when the pregnancy is removed in
			// the same transaction.
			if !changeSetDeletesPregnancy(changes, *before.PregnancyID) {
				result.Violations = append(result.Violations, Violation{
					Rule:     r.Name(),
					Severity: SeverityBlock,
					Message:  "pregnancy link may only be cleared when the pregnancy is deleted",
					Entity:   EntityBreedingRecord,
					EntityID: after.ID,
				})
			}
		case *after.PregnancyID != *before.PregnancyID:
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: SeverityBlock,
				Message:  "pregnancy link is immutable once set",
				Entity:   EntityBreedingRecord,
				EntityID: after.ID,
			})
		}
	}
	return result
}

func (r RecordLinkRule) checkPregnancy(before, after Pregnancy) Result {
	var result Result
	if !before.ExpectedBirthDate.Equal(after.ExpectedBirthDate) {
		result.Violations = append(result.Violations, Violation{
			Rule:     r.Name(),
			Severity: SeverityBlock,
			Message:  "expected birth date is fixed at creation",
			Entity:   EntityPregnancy,
			EntityID: after.ID,
		})
	}
	if after.Status == PregnancyBirthed && after.ActualBirthDate == nil {
		result.Violations = append(result.Violations, Violation{
			Rule:     r.Name(),
			Severity: SeverityBlock,
			Message:  "birthed pregnancy requires an actual birth date",
			Entity:   EntityPregnancy,
			EntityID: after.ID,
		})
	}
	if before.Confirmed && !after.Confirmed {
		result.Violations = append(result.Violations, Violation{
			Rule:     r.Name(),
			Severity: SeverityBlock,
			Message:  fmt.Sprintf("pregnancy %s cannot be unconfirmed", after.ID),
			Entity:   EntityPregnancy,
			EntityID: after.ID,
		})
	}
	return result
}

func (r RecordLinkRule) checkBirth(before, after Birth, changes []Change) Result {
	var result Result
	if before.PregnancyID != nil && after.PregnancyID == nil {
		if !changeSetDeletesPregnancy(changes, *before.PregnancyID) {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: SeverityBlock,
				Message:  "birth pregnancy link may only be cleared when the pregnancy is deleted",
				Entity:   EntityBirth,
				EntityID: after.ID,
			})
		}
	}
	return result
}

func changeSetDeletesPregnancy(changes []Change, id string) bool {
	for _, change := range changes {
		if change.Entity != EntityPregnancy || change.Action != ActionDelete {
			continue
		}
		if before, ok := change.Before.(Pregnancy); ok && before.ID == id {
			return true
		}
	}
	return false
}
