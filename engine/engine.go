// Package engine computes treatment plans from a patient and the loaded
// reference lists of diseases, medications and clinics.
//
// A disease is likely for a patient when the share of its symptoms the
// patient presents, rounded to two decimals, is at least LikelihoodThreshold.
// Likely diseases drive both medication selection and clinic selection.
// All operations are read-only over the current reference snapshot.
package engine

import (
	"time"

	"github.com/giygas/treatment-plan-api/data"
	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/interfaces"
	"github.com/shopspring/decimal"
)

// Compile-time check to ensure TreatmentPlanEngine implements TreatmentPlanner
var _ interfaces.TreatmentPlanner = (*TreatmentPlanEngine)(nil)

// LikelihoodThreshold is the inclusive lower bound for a disease to be likely.
var LikelihoodThreshold = decimal.New(70, -2)

// IsLikely reports whether a rounded likelihood reaches the threshold
func IsLikely(likelihood decimal.Decimal) bool {
	return likelihood.GreaterThanOrEqual(LikelihoodThreshold)
}

// Clock supplies the current time for age computations.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// FixedClock returns a Clock that always reports t
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Option configures a TreatmentPlanEngine
type Option func(*TreatmentPlanEngine)

// WithClock overrides the system clock
func WithClock(c Clock) Option {
	return func(e *TreatmentPlanEngine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithDataStore makes the engine read and write reference data through store
func WithDataStore(store interfaces.DataStore) Option {
	return func(e *TreatmentPlanEngine) {
		if store != nil {
			e.store = store
		}
	}
}

// TreatmentPlanEngine answers treatment plan queries. Each engine owns its
// reference data; create one per scenario when isolation is needed.
type TreatmentPlanEngine struct {
	store interfaces.DataStore
	clock Clock
}

// NewTreatmentPlanEngine creates an engine with empty reference lists
func NewTreatmentPlanEngine(opts ...Option) *TreatmentPlanEngine {
	e := &TreatmentPlanEngine{clock: systemClock{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = data.NewReferenceContainer()
	}
	return e
}

// Init replaces the reference lists wholesale. No validation is performed.
func (e *TreatmentPlanEngine) Init(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication) {
	e.store.UpdateData(diseases, clinics, medications)
}

// ReferenceSet returns the snapshot the engine currently answers from
func (e *TreatmentPlanEngine) ReferenceSet() *entities.ReferenceSet {
	return e.store.GetReferenceSet()
}
