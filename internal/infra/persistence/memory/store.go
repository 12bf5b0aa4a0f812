// Package memory provides the in-memory implementation of the reproductive
// record store used for tests and ephemeral environments, and as the
// transactional core the durable backends build on.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"herdcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// EstrusDetection aliases domain.EstrusDetection for persistence operations.
	EstrusDetection = domain.EstrusDetection
	// BreedingRecord aliases domain.BreedingRecord.
	BreedingRecord = domain.BreedingRecord
	// Pregnancy aliases domain.Pregnancy.
	Pregnancy = domain.Pregnancy
	// Birth aliases domain.Birth.
	Birth = domain.Birth
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	detections  map[string]EstrusDetection
	breedings   map[string]BreedingRecord
	pregnancies map[string]Pregnancy
	births      map[string]Birth
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Detections  map[string]EstrusDetection `json:"estrus_detections"`
	Breedings   map[string]BreedingRecord  `json:"breeding_records"`
	Pregnancies map[string]Pregnancy       `json:"pregnancies"`
	Births      map[string]Birth           `json:"births"`
}

func newMemoryState() memoryState {
	return memoryState{
		detections:  make(map[string]EstrusDetection),
		breedings:   make(map[string]BreedingRecord),
		pregnancies: make(map[string]Pregnancy),
		births:      make(map[string]Birth),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.detections {
		cloned.detections[k] = cloneDetection(v)
	}
	for k, v := range s.breedings {
		cloned.breedings[k] = cloneBreeding(v)
	}
	for k, v := range s.pregnancies {
		cloned.pregnancies[k] = clonePregnancy(v)
	}
	for k, v := range s.births {
		cloned.births[k] = cloneBirth(v)
	}
	return cloned
}

func cloneDetection(d EstrusDetection) EstrusDetection {
	cp := d
	if d.Behaviors != nil {
		cp.Behaviors = make(map[string]float64, len(d.Behaviors))
		for k, v := range d.Behaviors {
			cp.Behaviors[k] = v
		}
	}
	cp.Notes = cloneStringPtr(d.Notes)
	return cp
}

func cloneBreeding(b BreedingRecord) BreedingRecord {
	cp := b
	cp.MaleID = cloneStringPtr(b.MaleID)
	cp.Technician = cloneStringPtr(b.Technician)
	cp.Batch = cloneStringPtr(b.Batch)
	cp.EstrusDetectionID = cloneStringPtr(b.EstrusDetectionID)
	cp.PregnancyID = cloneStringPtr(b.PregnancyID)
	cp.Success = cloneBoolPtr(b.Success)
	return cp
}

func clonePregnancy(p Pregnancy) Pregnancy {
	cp := p
	cp.SireID = cloneStringPtr(p.SireID)
	cp.ActualBirthDate = cloneTimePtr(p.ActualBirthDate)
	cp.ConfirmedAt = cloneTimePtr(p.ConfirmedAt)
	cp.BreedingRecordID = cloneStringPtr(p.BreedingRecordID)
	cp.Notes = cloneStringPtr(p.Notes)
	if p.ConfirmationMethod != nil {
		m := *p.ConfirmationMethod
		cp.ConfirmationMethod = &m
	}
	return cp
}

func cloneBirth(b Birth) Birth {
	cp := b
	cp.PregnancyID = cloneStringPtr(b.PregnancyID)
	cp.OffspringIDs = append([]string(nil), b.OffspringIDs...)
	cp.BirthWeight = cloneFloatPtr(b.BirthWeight)
	cp.Complications = cloneStringPtr(b.Complications)
	cp.VetName = cloneStringPtr(b.VetName)
	cp.AIPredictedAt = cloneTimePtr(b.AIPredictedAt)
	cp.AIDetectedAt = cloneTimePtr(b.AIDetectedAt)
	cp.Notes = cloneStringPtr(b.Notes)
	return cp
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func cloneBoolPtr(v *bool) *bool {
	if v == nil {
		return nil
	}
	b := *v
	return &b
}

func cloneFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func cloneTimePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	t := *v
	return &t
}

// Store provides an in-memory transactional record store backed by a rules
// engine. All transactions are serialized behind a single mutex over
// clone-on-write state, so two concurrent transitions of the same record can
// never both commit.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string { return uuid.NewString() }

// ExportState returns a deep copy of the committed state for snapshotting.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := s.state.clone()
	return Snapshot{
		Detections:  cloned.detections,
		Breedings:   cloned.breedings,
		Pregnancies: cloned.pregnancies,
		Births:      cloned.births,
	}
}

// ImportState replaces the committed state with the supplied snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for k, v := range snapshot.Detections {
		state.detections[k] = cloneDetection(v)
	}
	for k, v := range snapshot.Breedings {
		state.breedings[k] = cloneBreeding(v)
	}
	for k, v := range snapshot.Pregnancies {
		state.pregnancies[k] = clonePregnancy(v)
	}
	for k, v := range snapshot.Births {
		state.births[k] = cloneBirth(v)
	}
	s.state = state
}

// RulesEngine exposes the engine for rule registration by higher layers.
func (s *Store) RulesEngine() *RulesEngine { return s.engine }

// SetNowFunc overrides the transaction clock. Intended for tests and the
// background sweep, which must run against an injected time source.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// NowFunc returns the store clock.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

var _ Transaction = (*transaction)(nil)

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// byRecency sorts records most recently created first; id breaks ties so the
// order is stable across identical timestamps.
func byRecency(createdI, createdJ time.Time, idI, idJ string) bool {
	if !createdI.Equal(createdJ) {
		return createdI.After(createdJ)
	}
	return idI < idJ
}

func (v transactionView) ListEstrusDetections() []EstrusDetection {
	out := make([]EstrusDetection, 0, len(v.state.detections))
	for _, d := range v.state.detections {
		out = append(out, cloneDetection(d))
	}
	sort.Slice(out, func(i, j int) bool {
		return byRecency(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (v transactionView) ListBreedingRecords() []BreedingRecord {
	out := make([]BreedingRecord, 0, len(v.state.breedings))
	for _, b := range v.state.breedings {
		out = append(out, cloneBreeding(b))
	}
	sort.Slice(out, func(i, j int) bool {
		return byRecency(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (v transactionView) ListPregnancies() []Pregnancy {
	out := make([]Pregnancy, 0, len(v.state.pregnancies))
	for _, p := range v.state.pregnancies {
		out = append(out, clonePregnancy(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return byRecency(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (v transactionView) ListBirths() []Birth {
	out := make([]Birth, 0, len(v.state.births))
	for _, b := range v.state.births {
		out = append(out, cloneBirth(b))
	}
	sort.Slice(out, func(i, j int) bool {
		return byRecency(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func (v transactionView) ListEstrusDetectionsByAnimal(animalID string) []EstrusDetection {
	all := v.ListEstrusDetections()
	out := all[:0]
	for _, d := range all {
		if d.AnimalID == animalID {
			out = append(out, d)
		}
	}
	return out
}

func (v transactionView) ListBreedingRecordsByFemale(femaleID string) []BreedingRecord {
	all := v.ListBreedingRecords()
	out := all[:0]
	for _, b := range all {
		if b.FemaleID == femaleID {
			out = append(out, b)
		}
	}
	return out
}

func (v transactionView) ListPregnanciesByAnimal(animalID string) []Pregnancy {
	all := v.ListPregnancies()
	out := all[:0]
	for _, p := range all {
		if p.AnimalID == animalID {
			out = append(out, p)
		}
	}
	return out
}

func (v transactionView) ListBirthsByMother(motherID string) []Birth {
	all := v.ListBirths()
	out := all[:0]
	for _, b := range all {
		if b.MotherID == motherID {
			out = append(out, b)
		}
	}
	return out
}

func (v transactionView) FindEstrusDetection(id string) (EstrusDetection, bool) {
	d, ok := v.state.detections[id]
	if !ok {
		return EstrusDetection{}, false
	}
	return cloneDetection(d), true
}

func (v transactionView) FindBreedingRecord(id string) (BreedingRecord, bool) {
	b, ok := v.state.breedings[id]
	if !ok {
		return BreedingRecord{}, false
	}
	return cloneBreeding(b), true
}

func (v transactionView) FindPregnancy(id string) (Pregnancy, bool) {
	p, ok := v.state.pregnancies[id]
	if !ok {
		return Pregnancy{}, false
	}
	return clonePregnancy(p), true
}

func (v transactionView) FindBirth(id string) (Birth, bool) {
	b, ok := v.state.births[id]
	if !ok {
		return Birth{}, false
	}
	return cloneBirth(b), true
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy replaces committed state only if fn succeeds and no
// registered rule reports a blocking violation.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the committed state.
// Writers blocked on the store mutex never see the snapshot mutate.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) FindEstrusDetection(id string) (EstrusDetection, bool) {
	return newTransactionView(&tx.state).FindEstrusDetection(id)
}

func (tx *transaction) FindBreedingRecord(id string) (BreedingRecord, bool) {
	return newTransactionView(&tx.state).FindBreedingRecord(id)
}

func (tx *transaction) FindPregnancy(id string) (Pregnancy, bool) {
	return newTransactionView(&tx.state).FindPregnancy(id)
}

func (tx *transaction) FindBirth(id string) (Birth, bool) {
	return newTransactionView(&tx.state).FindBirth(id)
}

func validateDetection(d EstrusDetection) error {
	if d.AnimalID == "" {
		return domain.ValidationError{Entity: domain.EntityEstrusDetection, EntityID: d.ID, Field: "animal_id", Rule: "required", Message: "animal reference is required"}
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return domain.ValidationError{Entity: domain.EntityEstrusDetection, EntityID: d.ID, Field: "confidence", Rule: "range", Message: "confidence must be within [0,1]"}
	}
	if d.WindowStart.Before(d.DetectedAt) {
		return domain.ValidationError{Entity: domain.EntityEstrusDetection, EntityID: d.ID, Field: "optimal_breeding_start", Rule: "window_order", Message: "breeding window must not open before detection"}
	}
	if !d.WindowEnd.After(d.WindowStart) {
		return domain.ValidationError{Entity: domain.EntityEstrusDetection, EntityID: d.ID, Field: "optimal_breeding_end", Rule: "window_order", Message: "breeding window must close after it opens"}
	}
	switch d.Status {
	case domain.EstrusDetected, domain.EstrusConfirmed, domain.EstrusBred, domain.EstrusMissed, domain.EstrusFalsePositive:
	default:
		return domain.ValidationError{Entity: domain.EntityEstrusDetection, EntityID: d.ID, Field: "status", Rule: "enum", Message: "unknown estrus status"}
	}
	return nil
}

func (tx *transaction) validateBreeding(b BreedingRecord) error {
	if b.FemaleID == "" {
		return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "female_id", Rule: "required", Message: "female reference is required"}
	}
	if b.Species == "" {
		return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "species", Rule: "required", Message: "species is required"}
	}
	if !b.Method.Valid() {
		return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "breeding_method", Rule: "enum", Message: "unknown breeding method"}
	}
	if b.BredAt.IsZero() {
		return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "breeding_date", Rule: "required", Message: "breeding date is required"}
	}
	if b.EstrusDetectionID != nil {
		detection, ok := tx.state.detections[*b.EstrusDetectionID]
		if !ok {
			return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "estrus_detection_id", Rule: "reference", Message: "referenced estrus detection does not exist"}
		}
		if detection.AnimalID != b.FemaleID {
			return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "estrus_detection_id", Rule: "same_animal", Message: "linked detection belongs to a different animal"}
		}
		if detection.Status != domain.EstrusConfirmed && detection.Status != domain.EstrusBred {
			return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "estrus_detection_id", Rule: "linkable_status", Message: "linked detection must be confirmed or bred"}
		}
	}
	if b.PregnancyID != nil {
		if _, ok := tx.state.pregnancies[*b.PregnancyID]; !ok {
			return domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "pregnancy_id", Rule: "reference", Message: "referenced pregnancy does not exist"}
		}
	}
	return nil
}

func validatePregnancy(p Pregnancy) error {
	if p.AnimalID == "" {
		return domain.ValidationError{Entity: domain.EntityPregnancy, EntityID: p.ID, Field: "animal_id", Rule: "required", Message: "animal reference is required"}
	}
	if !p.Method.Valid() {
		return domain.ValidationError{Entity: domain.EntityPregnancy, EntityID: p.ID, Field: "breeding_method", Rule: "enum", Message: "unknown breeding method"}
	}
	if !p.ExpectedBirthDate.After(p.BreedingDate) {
		return domain.ValidationError{Entity: domain.EntityPregnancy, EntityID: p.ID, Field: "expected_birth_date", Rule: "date_order", Message: "expected birth date must follow the breeding date"}
	}
	if p.ConfirmationMethod != nil && !p.ConfirmationMethod.Valid() {
		return domain.ValidationError{Entity: domain.EntityPregnancy, EntityID: p.ID, Field: "confirmation_method", Rule: "enum", Message: "unknown confirmation method"}
	}
	switch p.Status {
	case domain.PregnancyActive, domain.PregnancyBirthed, domain.PregnancyMiscarried, domain.PregnancyCancelled:
	default:
		return domain.ValidationError{Entity: domain.EntityPregnancy, EntityID: p.ID, Field: "status", Rule: "enum", Message: "unknown pregnancy status"}
	}
	return nil
}

func (tx *transaction) validateBirth(b Birth) error {
	if b.MotherID == "" {
		return domain.ValidationError{Entity: domain.EntityBirth, EntityID: b.ID, Field: "mother_id", Rule: "required", Message: "mother reference is required"}
	}
	if b.OffspringCount < 1 {
		return domain.ValidationError{Entity: domain.EntityBirth, EntityID: b.ID, Field: "offspring_count", Rule: "min", Message: "offspring count must be at least 1"}
	}
	if !b.BirthType.Valid() {
		return domain.ValidationError{Entity: domain.EntityBirth, EntityID: b.ID, Field: "birth_type", Rule: "enum", Message: "unknown birth type"}
	}
	if b.BirthDate.IsZero() {
		return domain.ValidationError{Entity: domain.EntityBirth, EntityID: b.ID, Field: "birth_date", Rule: "required", Message: "birth date is required"}
	}
	if b.PregnancyID != nil {
		pregnancy, ok := tx.state.pregnancies[*b.PregnancyID]
		if !ok {
			return domain.ValidationError{Entity: domain.EntityBirth, EntityID: b.ID, Field: "pregnancy_id", Rule: "reference", Message: "referenced pregnancy does not exist"}
		}
		if pregnancy.AnimalID != b.MotherID {
			return domain.ValidationError{Entity: domain.EntityBirth, EntityID: b.ID, Field: "mother_id", Rule: "same_animal", Message: "mother must match the referenced pregnancy's animal"}
		}
	}
	return nil
}

// CreateEstrusDetection stores a new heat detection within the transaction.
func (tx *transaction) CreateEstrusDetection(d EstrusDetection) (EstrusDetection, error) {
	if d.ID == "" {
		d.ID = tx.store.newID()
	}
	if _, exists := tx.state.detections[d.ID]; exists {
		return EstrusDetection{}, domain.ValidationError{Entity: domain.EntityEstrusDetection, EntityID: d.ID, Field: "id", Rule: "unique", Message: "id already exists"}
	}
	if d.Status == "" {
		d.Status = domain.EstrusDetected
	}
	if err := validateDetection(d); err != nil {
		return EstrusDetection{}, err
	}
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.detections[d.ID] = cloneDetection(d)
	tx.recordChange(Change{Entity: domain.EntityEstrusDetection, Action: domain.ActionCreate, After: cloneDetection(d)})
	return cloneDetection(d), nil
}

// UpdateEstrusDetection mutates a detection using the provided mutator.
func (tx *transaction) UpdateEstrusDetection(id string, mutator func(*EstrusDetection) error) (EstrusDetection, error) {
	current, ok := tx.state.detections[id]
	if !ok {
		return EstrusDetection{}, domain.NotFoundError{Entity: domain.EntityEstrusDetection, ID: id}
	}
	before := cloneDetection(current)
	if err := mutator(&current); err != nil {
		return EstrusDetection{}, err
	}
	current.ID = id
	if err := validateDetection(current); err != nil {
		return EstrusDetection{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.detections[id] = cloneDetection(current)
	tx.recordChange(Change{Entity: domain.EntityEstrusDetection, Action: domain.ActionUpdate, Before: before, After: cloneDetection(current)})
	return cloneDetection(current), nil
}

// DeleteEstrusDetection removes a detection. Reserved for administrative
// purge; callers archive first.
func (tx *transaction) DeleteEstrusDetection(id string) error {
	current, ok := tx.state.detections[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityEstrusDetection, ID: id}
	}
	delete(tx.state.detections, id)
	tx.recordChange(Change{Entity: domain.EntityEstrusDetection, Action: domain.ActionDelete, Before: cloneDetection(current)})
	return nil
}

// CreateBreedingRecord stores a breeding event with write-time referential checks.
func (tx *transaction) CreateBreedingRecord(b BreedingRecord) (BreedingRecord, error) {
	if b.ID == "" {
		b.ID = tx.store.newID()
	}
	if _, exists := tx.state.breedings[b.ID]; exists {
		return BreedingRecord{}, domain.ValidationError{Entity: domain.EntityBreedingRecord, EntityID: b.ID, Field: "id", Rule: "unique", Message: "id already exists"}
	}
	if err := tx.validateBreeding(b); err != nil {
		return BreedingRecord{}, err
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	tx.state.breedings[b.ID] = cloneBreeding(b)
	tx.recordChange(Change{Entity: domain.EntityBreedingRecord, Action: domain.ActionCreate, After: cloneBreeding(b)})
	return cloneBreeding(b), nil
}

// UpdateBreedingRecord mutates a breeding record.
func (tx *transaction) UpdateBreedingRecord(id string, mutator func(*BreedingRecord) error) (BreedingRecord, error) {
	current, ok := tx.state.breedings[id]
	if !ok {
		return BreedingRecord{}, domain.NotFoundError{Entity: domain.EntityBreedingRecord, ID: id}
	}
	before := cloneBreeding(current)
	if err := mutator(&current); err != nil {
		return BreedingRecord{}, err
	}
	current.ID = id
	if err := tx.validateBreeding(current); err != nil {
		return BreedingRecord{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.breedings[id] = cloneBreeding(current)
	tx.recordChange(Change{Entity: domain.EntityBreedingRecord, Action: domain.ActionUpdate, Before: before, After: cloneBreeding(current)})
	return cloneBreeding(current), nil
}

// DeleteBreedingRecord removes a breeding record (administrative purge only).
func (tx *transaction) DeleteBreedingRecord(id string) error {
	current, ok := tx.state.breedings[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityBreedingRecord, ID: id}
	}
	delete(tx.state.breedings, id)
	tx.recordChange(Change{Entity: domain.EntityBreedingRecord, Action: domain.ActionDelete, Before: cloneBreeding(current)})
	return nil
}

// CreatePregnancy stores a new pregnancy.
func (tx *transaction) CreatePregnancy(p Pregnancy) (Pregnancy, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.pregnancies[p.ID]; exists {
		return Pregnancy{}, domain.ValidationError{Entity: domain.EntityPregnancy, EntityID: p.ID, Field: "id", Rule: "unique", Message: "id already exists"}
	}
	if p.Status == "" {
		p.Status = domain.PregnancyActive
	}
	if err := validatePregnancy(p); err != nil {
		return Pregnancy{}, err
	}
	if p.BreedingRecordID != nil {
		if _, ok := tx.state.breedings[*p.BreedingRecordID]; !ok {
			return Pregnancy{}, domain.ValidationError{Entity: domain.EntityPregnancy, EntityID: p.ID, Field: "breeding_record_id", Rule: "reference", Message: "referenced breeding record does not exist"}
		}
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.pregnancies[p.ID] = clonePregnancy(p)
	tx.recordChange(Change{Entity: domain.EntityPregnancy, Action: domain.ActionCreate, After: clonePregnancy(p)})
	return clonePregnancy(p), nil
}

// UpdatePregnancy mutates a pregnancy.
func (tx *transaction) UpdatePregnancy(id string, mutator func(*Pregnancy) error) (Pregnancy, error) {
	current, ok := tx.state.pregnancies[id]
	if !ok {
		return Pregnancy{}, domain.NotFoundError{Entity: domain.EntityPregnancy, ID: id}
	}
	before := clonePregnancy(current)
	if err := mutator(&current); err != nil {
		return Pregnancy{}, err
	}
	current.ID = id
	if err := validatePregnancy(current); err != nil {
		return Pregnancy{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.pregnancies[id] = clonePregnancy(current)
	tx.recordChange(Change{Entity: domain.EntityPregnancy, Action: domain.ActionUpdate, Before: before, After: clonePregnancy(current)})
	return clonePregnancy(current), nil
}

// DeletePregnancy removes a pregnancy. Cross-references are nulled by the
// caller in the same transaction, never cascaded here.
func (tx *transaction) DeletePregnancy(id string) error {
	current, ok := tx.state.pregnancies[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityPregnancy, ID: id}
	}
	delete(tx.state.pregnancies, id)
	tx.recordChange(Change{Entity: domain.EntityPregnancy, Action: domain.ActionDelete, Before: clonePregnancy(current)})
	return nil
}

// CreateBirth stores a birth event with write-time referential checks.
func (tx *transaction) CreateBirth(b Birth) (Birth, error) {
	if b.ID == "" {
		b.ID = tx.store.newID()
	}
	if _, exists := tx.state.births[b.ID]; exists {
		return Birth{}, domain.ValidationError{Entity: domain.EntityBirth, EntityID: b.ID, Field: "id", Rule: "unique", Message: "id already exists"}
	}
	if b.OffspringCount == 0 {
		b.OffspringCount = 1
	}
	if err := tx.validateBirth(b); err != nil {
		return Birth{}, err
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	tx.state.births[b.ID] = cloneBirth(b)
	tx.recordChange(Change{Entity: domain.EntityBirth, Action: domain.ActionCreate, After: cloneBirth(b)})
	return cloneBirth(b), nil
}

// UpdateBirth mutates a birth record. Only corrective edits (notes,
// offspring tagging) are legal; the link rules block anything else.
func (tx *transaction) UpdateBirth(id string, mutator func(*Birth) error) (Birth, error) {
	current, ok := tx.state.births[id]
	if !ok {
		return Birth{}, domain.NotFoundError{Entity: domain.EntityBirth, ID: id}
	}
	before := cloneBirth(current)
	if err := mutator(&current); err != nil {
		return Birth{}, err
	}
	current.ID = id
	if err := tx.validateBirth(current); err != nil {
		return Birth{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.births[id] = cloneBirth(current)
	tx.recordChange(Change{Entity: domain.EntityBirth, Action: domain.ActionUpdate, Before: before, After: cloneBirth(current)})
	return cloneBirth(current), nil
}

// Read helpers ---------------------------------------------------------------

// GetEstrusDetection retrieves a detection by id from committed state.
func (s *Store) GetEstrusDetection(id string) (EstrusDetection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.state.detections[id]
	if !ok {
		return EstrusDetection{}, false
	}
	return cloneDetection(d), true
}

// GetBreedingRecord retrieves a breeding record by id from committed state.
func (s *Store) GetBreedingRecord(id string) (BreedingRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.breedings[id]
	if !ok {
		return BreedingRecord{}, false
	}
	return cloneBreeding(b), true
}

// GetPregnancy retrieves a pregnancy by id from committed state.
func (s *Store) GetPregnancy(id string) (Pregnancy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.pregnancies[id]
	if !ok {
		return Pregnancy{}, false
	}
	return clonePregnancy(p), true
}

// GetBirth retrieves a birth by id from committed state.
func (s *Store) GetBirth(id string) (Birth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.births[id]
	if !ok {
		return Birth{}, false
	}
	return cloneBirth(b), true
}

// ListEstrusDetections returns all detections ordered by recency.
func (s *Store) ListEstrusDetections() []EstrusDetection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListEstrusDetections()
}

// ListBreedingRecords returns all breeding records ordered by recency.
func (s *Store) ListBreedingRecords() []BreedingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListBreedingRecords()
}

// ListPregnancies returns all pregnancies ordered by recency.
func (s *Store) ListPregnancies() []Pregnancy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListPregnancies()
}

// ListBirths returns all births ordered by recency.
func (s *Store) ListBirths() []Birth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).ListBirths()
}
