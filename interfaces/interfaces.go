// Package interfaces defines core abstractions for the treatment plan API
// to improve testability and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/giygas/treatment-plan-api/entities"
	"github.com/shopspring/decimal"
)

// DataQualityReport provides a summary of reference data quality issues
type DataQualityReport struct {
	DuplicateDiseases        []string
	DuplicateMedications     []string
	DuplicateClinics         []string
	DiseasesWithoutSymptoms  []string
	DiseasesWithoutTreatment []string
	UnknownMedications       []string // referenced by a combination but not priced
	UnknownClinicDiseases    []string // referenced by a clinic but not defined
}

// HasIssues reports whether the report found anything worth logging
func (r *DataQualityReport) HasIssues() bool {
	return len(r.DuplicateDiseases) > 0 || len(r.DuplicateMedications) > 0 ||
		len(r.DuplicateClinics) > 0 || len(r.DiseasesWithoutSymptoms) > 0 ||
		len(r.DiseasesWithoutTreatment) > 0 || len(r.UnknownMedications) > 0 ||
		len(r.UnknownClinicDiseases) > 0
}

// DataStore defines the contract for reference data storage.
// Reads always see one consistent snapshot; updates replace it atomically.
type DataStore interface {
	// Data retrieval methods
	GetReferenceSet() *entities.ReferenceSet
	GetDiseases() []entities.Disease
	GetClinics() []entities.Clinic
	GetMedications() []entities.Medication
	GetMedicationsMap() map[string]entities.Medication
	GetLastUpdated() time.Time
	IsUpdating() bool

	// Data update methods
	UpdateData(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication)
	BeginUpdate() bool
	EndUpdate()
}

// TreatmentPlanner is the treatment plan engine contract.
type TreatmentPlanner interface {
	Init(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication)
	AgeInYears(patient entities.Patient) int
	AgeInMonths(patient entities.Patient) int
	DiseaseLikelihoods(patient entities.Patient) map[string]decimal.Decimal
	MedicationsForDisease(patient entities.Patient, disease entities.Disease) map[string]decimal.Decimal
	ClinicsBasedOnAgeAndDiseases(patient entities.Patient) []entities.Clinic
	TreatmentPlanForPatient(patient entities.Patient) entities.TreatmentPlan
}

// Parser defines the contract for reading reference data from its source.
type Parser interface {
	ParseReferenceData() ([]entities.Disease, []entities.Clinic, []entities.Medication, error)
}

// Scheduler defines the contract for scheduled reference data reloads.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	TreatmentPlan(w http.ResponseWriter, r *http.Request)
	DiseaseLikelihoods(w http.ResponseWriter, r *http.Request)
	Clinics(w http.ResponseWriter, r *http.Request)
	MedicationsForDisease(w http.ResponseWriter, r *http.Request)
	Age(w http.ResponseWriter, r *http.Request)
	ReferenceSummary(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status label, details and the HTTP status to use
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled reload time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for validation operations.
type DataValidator interface {
	ValidateDisease(d *entities.Disease) error
	ValidateMedication(m *entities.Medication) error
	ValidateClinic(c *entities.Clinic) error

	// ValidateReferenceSet validates every entity and stops at the first error
	ValidateReferenceSet(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication) error

	// ReportDataQuality collects cross-entity issues without failing
	ReportDataQuality(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication) *DataQualityReport

	ValidatePatient(p *entities.Patient, now time.Time) error

	// ValidateInput validates user supplied strings
	ValidateInput(input string) error
}
