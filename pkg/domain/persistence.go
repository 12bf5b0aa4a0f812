package domain

import "context"

// Transaction exposes the record operations a persistence implementation
// must support within an atomic scope. A transaction either commits every
// recorded mutation or none of them.
type Transaction interface {
	Snapshot() TransactionView
	CreateEstrusDetection(EstrusDetection) (EstrusDetection, error)
	UpdateEstrusDetection(id string, mutator func(*EstrusDetection) error) (EstrusDetection, error)
	DeleteEstrusDetection(id string) error
	CreateBreedingRecord(BreedingRecord) (BreedingRecord, error)
	UpdateBreedingRecord(id string, mutator func(*BreedingRecord) error) (BreedingRecord, error)
	DeleteBreedingRecord(id string) error
	CreatePregnancy(Pregnancy) (Pregnancy, error)
	UpdatePregnancy(id string, mutator func(*Pregnancy) error) (Pregnancy, error)
	DeletePregnancy(id string) error
	CreateBirth(Birth) (Birth, error)
	UpdateBirth(id string, mutator func(*Birth) error) (Birth, error)
	FindEstrusDetection(id string) (EstrusDetection, bool)
	FindBreedingRecord(id string) (BreedingRecord, bool)
	FindPregnancy(id string) (Pregnancy, bool)
	FindBirth(id string) (Birth, bool)
}

// TransactionView provides read-only access to snapshot data. Listings are
// ordered by recency (most recently created first).
type TransactionView interface {
	RuleView
	ListEstrusDetectionsByAnimal(animalID string) []EstrusDetection
	ListBreedingRecordsByFemale(femaleID string) []BreedingRecord
	ListPregnanciesByAnimal(animalID string) []Pregnancy
	ListBirthsByMother(motherID string) []Birth
}

// PersistentStore is the minimal abstraction over durable backends used by
// higher layers. Reads outside RunInTransaction observe committed state only.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetEstrusDetection(id string) (EstrusDetection, bool)
	GetBreedingRecord(id string) (BreedingRecord, bool)
	GetPregnancy(id string) (Pregnancy, bool)
	GetBirth(id string) (Birth, bool)
	ListEstrusDetections() []EstrusDetection
	ListBreedingRecords() []BreedingRecord
	ListPregnancies() []Pregnancy
	ListBirths() []Birth
}
