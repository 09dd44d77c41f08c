// Package data provides thread-safe storage for the reference lists used by
// the treatment plan engine. Updates swap a whole snapshot atomically so that
// readers never observe diseases, clinics and medications from different loads.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/interfaces"
	"github.com/giygas/treatment-plan-api/logging"
)

// Compile-time check to ensure ReferenceContainer implements DataStore
var _ interfaces.DataStore = (*ReferenceContainer)(nil)

// ReferenceContainer holds the current reference snapshot
type ReferenceContainer struct {
	current  atomic.Value // *entities.ReferenceSet
	updating atomic.Bool
	now      func() time.Time
}

// NewReferenceContainer creates a container holding an empty snapshot
func NewReferenceContainer() *ReferenceContainer {
	rc := &ReferenceContainer{now: time.Now}
	empty := entities.NewReferenceSet(nil, nil, nil, time.Time{})
	rc.current.Store(empty)
	return rc
}

// Thread-safe getters with type check

// GetReferenceSet returns the current snapshot
func (rc *ReferenceContainer) GetReferenceSet() *entities.ReferenceSet {
	if v := rc.current.Load(); v != nil {
		if rs, ok := v.(*entities.ReferenceSet); ok && rs != nil {
			return rs
		}
	}

	logging.Warn("Reference set is empty or invalid")
	return entities.NewReferenceSet(nil, nil, nil, time.Time{})
}

// GetDiseases returns the disease reference list
func (rc *ReferenceContainer) GetDiseases() []entities.Disease {
	return rc.GetReferenceSet().Diseases
}

// GetClinics returns the clinic reference list
func (rc *ReferenceContainer) GetClinics() []entities.Clinic {
	return rc.GetReferenceSet().Clinics
}

// GetMedications returns the medication reference list
func (rc *ReferenceContainer) GetMedications() []entities.Medication {
	return rc.GetReferenceSet().Medications
}

// GetMedicationsMap returns medications indexed by name for O(1) lookups
func (rc *ReferenceContainer) GetMedicationsMap() map[string]entities.Medication {
	return rc.GetReferenceSet().MedicationsByName
}

// GetLastUpdated returns the timestamp of the last data update
func (rc *ReferenceContainer) GetLastUpdated() time.Time {
	return rc.GetReferenceSet().LoadedAt
}

// IsUpdating returns true if a data update is currently in progress
func (rc *ReferenceContainer) IsUpdating() bool {
	return rc.updating.Load()
}

// UpdateData replaces all reference lists with a new snapshot.
// Nothing from the previous snapshot is carried over.
func (rc *ReferenceContainer) UpdateData(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication) {
	rs := entities.NewReferenceSet(diseases, clinics, medications, rc.now())
	rc.current.Store(rs)

	logging.Debug("Reference data swapped",
		"version", rs.Version.String(),
		"diseases", len(rs.Diseases),
		"clinics", len(rs.Clinics),
		"medications", len(rs.Medications),
	)
}

// BeginUpdate marks the start of a data update operation.
// Returns true if update can proceed, false if another update is in progress
func (rc *ReferenceContainer) BeginUpdate() bool {
	return rc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (rc *ReferenceContainer) EndUpdate() {
	rc.updating.Store(false)
}
