// Package handlers provides HTTP request handlers for the treatment plan API.
// Every plan endpoint takes the patient as a JSON body and answers from the
// reference snapshot that is current when the request arrives.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/interfaces"
	"github.com/giygas/treatment-plan-api/logging"
	"github.com/giygas/treatment-plan-api/metrics"
	"github.com/giygas/treatment-plan-api/validation"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	planner   interfaces.TreatmentPlanner
	dataStore interfaces.DataStore
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
	now       func() time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(planner interfaces.TreatmentPlanner, dataStore interfaces.DataStore, validator interfaces.DataValidator, health interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		planner:   planner,
		dataStore: dataStore,
		validator: validator,
		health:    health,
		now:       time.Now,
	}
}

// PatientRequest is the JSON body accepted by the plan endpoints
type PatientRequest struct {
	Name                string          `json:"name"`
	DateOfBirth         string          `json:"dateOfBirth"` // YYYY-MM-DD
	Weight              decimal.Decimal `json:"weight"`      // kg
	Symptoms            []string        `json:"symptoms"`
	MedicationAllergies []string        `json:"medicationAllergies"`
	MRN                 string          `json:"mrn"`
}

// AgeResponse is returned by the age endpoint
type AgeResponse struct {
	Years       int `json:"years"`
	Months      int `json:"months"`
	TotalMonths int `json:"totalMonths"`
}

// ReferenceSummary describes the loaded reference snapshot
type ReferenceSummary struct {
	Version     string    `json:"version"`
	LoadedAt    time.Time `json:"loadedAt"`
	Diseases    []string  `json:"diseases"`
	Clinics     []string  `json:"clinics"`
	Medications []string  `json:"medications"`
}

// HealthResponse keeps a stable field order for the health payload
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// decodePatient reads and validates the patient body. On failure it writes
// the error response and returns false.
func (h *HTTPHandlerImpl) decodePatient(w http.ResponseWriter, r *http.Request) (entities.Patient, bool) {
	var req PatientRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			h.RespondWithError(w, http.StatusBadRequest, "Missing request body")
		default:
			logging.Warn("Malformed patient body", "error", err)
			h.RespondWithError(w, http.StatusBadRequest, "Malformed patient body")
		}
		return entities.Patient{}, false
	}

	dob, err := time.Parse(time.DateOnly, strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("dateOfBirth must be YYYY-MM-DD, got %q", req.DateOfBirth))
		return entities.Patient{}, false
	}

	patient := entities.Patient{
		Name:                req.Name,
		DateOfBirth:         dob,
		Weight:              req.Weight,
		Symptoms:            req.Symptoms,
		MedicationAllergies: req.MedicationAllergies,
		MRN:                 req.MRN,
	}

	if err := h.validator.ValidatePatient(&patient, h.now()); err != nil {
		if !errors.Is(err, validation.ErrInvalidPatient) {
			logging.Error("Unexpected patient validation error", "error", err)
		}
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return entities.Patient{}, false
	}

	return patient, true
}

// TreatmentPlan returns the full plan for the patient
func (h *HTTPHandlerImpl) TreatmentPlan(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	plan := h.planner.TreatmentPlanForPatient(patient)
	metrics.RecordPlan(len(plan.LikelyDiseases))

	logging.Debug("Treatment plan computed",
		"mrn", patient.MRN,
		"clinics", len(plan.Clinics),
		"medications", len(plan.Medications),
	)

	h.RespondWithJSON(w, http.StatusOK, plan)
}

// DiseaseLikelihoods returns the likelihood of every disease for the patient
func (h *HTTPHandlerImpl) DiseaseLikelihoods(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, h.planner.DiseaseLikelihoods(patient))
}

// Clinics returns the clinics the patient should be sent to
func (h *HTTPHandlerImpl) Clinics(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, h.planner.ClinicsBasedOnAgeAndDiseases(patient))
}

// MedicationsForDisease returns the cheapest safe dosages for one disease
func (h *HTTPHandlerImpl) MedicationsForDisease(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.validator.ValidateInput(name); err != nil {
		logging.Warn("Unusual user input", "disease", name)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	disease, exists := h.dataStore.GetReferenceSet().DiseasesByName[name]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Disease not found")
		return
	}

	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	h.RespondWithJSON(w, http.StatusOK, h.planner.MedicationsForDisease(patient, disease))
}

// Age returns the patient's age split into years and months
func (h *HTTPHandlerImpl) Age(w http.ResponseWriter, r *http.Request) {
	patient, ok := h.decodePatient(w, r)
	if !ok {
		return
	}

	total := h.planner.AgeInMonths(patient)
	h.RespondWithJSON(w, http.StatusOK, AgeResponse{
		Years:       h.planner.AgeInYears(patient),
		Months:      total % 12,
		TotalMonths: total,
	})
}

// ReferenceSummary describes the reference data currently served
func (h *HTTPHandlerImpl) ReferenceSummary(w http.ResponseWriter, r *http.Request) {
	set := h.dataStore.GetReferenceSet()

	summary := ReferenceSummary{
		Version:     set.Version.String(),
		LoadedAt:    set.LoadedAt,
		Diseases:    make([]string, 0, len(set.Diseases)),
		Clinics:     make([]string, 0, len(set.Clinics)),
		Medications: make([]string, 0, len(set.Medications)),
	}
	for _, d := range set.Diseases {
		summary.Diseases = append(summary.Diseases, d.Name)
	}
	for _, c := range set.Clinics {
		summary.Clinics = append(summary.Clinics, c.Name)
	}
	for _, m := range set.Medications {
		summary.Medications = append(summary.Medications, m.Name)
	}

	h.RespondWithJSON(w, http.StatusOK, summary)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()
	h.RespondWithJSON(w, httpStatus, HealthResponse{Status: status, Data: data})
}
