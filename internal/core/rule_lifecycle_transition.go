package core

import (
	"context"
	"fmt"

	"herdcore/pkg/domain"
)

// estrusTransitions is the adjacency set of permitted estrus status moves.
// Terminal statuses have no outgoing edges.
var estrusTransitions = map[EstrusStatus]map[EstrusStatus]struct{}{
	EstrusDetected: {
		EstrusConfirmed:     {},
		EstrusMissed:        {},
		EstrusFalsePositive: {},
	},
	EstrusConfirmed: {
		EstrusBred:          {},
		EstrusMissed:        {},
		EstrusFalsePositive: {},
	},
}

// pregnancyTransitions is the adjacency set of permitted pregnancy status moves.
var pregnancyTransitions = map[PregnancyStatus]map[PregnancyStatus]struct{}{
	PregnancyActive: {
		PregnancyBirthed:    {},
		PregnancyMiscarried: {},
		PregnancyCancelled:  {},
	},
}

// EstrusTransitionRule blocks estrus status updates that leave a terminal
// state or skip the permitted adjacency.
type EstrusTransitionRule struct{}

// Name identifies the rule in violation reports.
func (EstrusTransitionRule) Name() string { return "estrus_lifecycle_transition" }

// Evaluate inspects estrus detection updates in the change set.
func (r EstrusTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	var result Result
	for _, change := range changes {
		if change.Entity != EntityEstrusDetection || change.Action != ActionUpdate {
			continue
		}
		before, okB := change.Before.(EstrusDetection)
		after, okA := change.After.(EstrusDetection)
		if !okB || !okA || before.Status == after.Status {
			continue
		}
		if _, ok := estrusTransitions[before.Status][after.Status]; !ok {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("estrus status cannot move from %s to %s", before.Status, after.Status),
				Entity:   EntityEstrusDetection,
				EntityID: after.ID,
			})
		}
	}
	return result, nil
}

// PregnancyTransitionRule blocks pregnancy status updates out of terminal
// states. Active is the only state with outgoing edges.
type PregnancyTransitionRule struct{}

// Name identifies the rule in violation reports.
func (PregnancyTransitionRule) Name() string { return "pregnancy_lifecycle_transition" }

// Evaluate inspects pregnancy updates in the change set.
func (r PregnancyTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []Change) (Result, error) {
	var result Result
	for _, change := range changes {
		if change.Entity != EntityPregnancy || change.Action != ActionUpdate {
			continue
		}
		before, okB := change.Before.(Pregnancy)
		after, okA := change.After.(Pregnancy)
		if !okB || !okA || before.Status == after.Status {
			continue
		}
		if _, ok := pregnancyTransitions[before.Status][after.Status]; !ok {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("pregnancy status cannot move from %s to %s", before.Status, after.Status),
				Entity:   EntityPregnancy,
				EntityID: after.ID,
			})
		}
	}
	return result, nil
}
