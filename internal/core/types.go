package core

import "herdcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	EstrusStatus       = domain.EstrusStatus
	PregnancyStatus    = domain.PregnancyStatus
	BreedingMethod     = domain.BreedingMethod
	ConfirmationMethod = domain.ConfirmationMethod
	BirthType          = domain.BirthType
	Base               = domain.Base
	EstrusDetection    = domain.EstrusDetection
	BreedingRecord     = domain.BreedingRecord
	Pregnancy          = domain.Pregnancy
	Birth              = domain.Birth
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityEstrusDetection = domain.EntityEstrusDetection
	EntityBreedingRecord  = domain.EntityBreedingRecord
	EntityPregnancy       = domain.EntityPregnancy
	EntityBirth           = domain.EntityBirth
)

const (
	EstrusDetected      = domain.EstrusDetected
	EstrusConfirmed     = domain.EstrusConfirmed
	EstrusBred          = domain.EstrusBred
	EstrusMissed        = domain.EstrusMissed
	EstrusFalsePositive = domain.EstrusFalsePositive
)

const (
	PregnancyActive     = domain.PregnancyActive
	PregnancyBirthed    = domain.PregnancyBirthed
	PregnancyMiscarried = domain.PregnancyMiscarried
	PregnancyCancelled  = domain.PregnancyCancelled
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
