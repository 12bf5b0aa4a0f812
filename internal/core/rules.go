package core

import "herdcore/pkg/domain"

// NewDefaultRulesEngine builds the rules engine with the standard rule set
// applied to every transaction.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(EstrusTransitionRule{})
	engine.Register(PregnancyTransitionRule{})
	engine.Register(RecordLinkRule{})
	return engine
}
