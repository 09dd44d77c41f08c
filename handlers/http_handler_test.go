package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/treatment-plan-api/data"
	"github.com/giygas/treatment-plan-api/engine"
	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/metrics"
	"github.com/giygas/treatment-plan-api/validation"
	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

// stubHealthChecker returns a canned health result
type stubHealthChecker struct {
	status     string
	httpStatus int
}

func (s *stubHealthChecker) HealthCheck() (string, map[string]any, int) {
	return s.status, map[string]any{"diseases": 2}, s.httpStatus
}

func (s *stubHealthChecker) CalculateNextUpdate() time.Time {
	return testNow.Add(time.Hour)
}

func intPtr(i int) *int { return &i }

func newTestHandler(t *testing.T) *HTTPHandlerImpl {
	t.Helper()

	store := data.NewReferenceContainer()
	store.UpdateData(
		[]entities.Disease{
			{
				Name:     "Flu",
				Symptoms: []string{"fever", "cough", "fatigue"},
				MedicationCombinations: []entities.MedicationCombination{
					{"Paracetamol": decimal.NewFromInt(10)},
				},
			},
			{
				Name:     "Migraine",
				Symptoms: []string{"headache", "nausea"},
				MedicationCombinations: []entities.MedicationCombination{
					{"Ibuprofen": decimal.NewFromInt(5)},
				},
			},
		},
		[]entities.Clinic{
			{Name: "General", MinAgeInMonths: 0, Diseases: []string{"Flu", "Migraine"}},
			{Name: "Pediatrics", MinAgeInMonths: 0, MaxAgeInMonths: intPtr(215), Diseases: []string{"Flu"}},
		},
		[]entities.Medication{
			{Name: "Paracetamol", CostPerMg: decimal.RequireFromString("0.01")},
			{Name: "Ibuprofen", CostPerMg: decimal.RequireFromString("0.02")},
		},
	)

	planner := engine.NewTreatmentPlanEngine(
		engine.WithClock(engine.FixedClock(testNow)),
		engine.WithDataStore(store),
	)

	h := NewHTTPHandler(planner, store, validation.NewDataValidator(), &stubHealthChecker{status: "healthy", httpStatus: http.StatusOK})
	h.now = func() time.Time { return testNow }
	return h
}

func newTestRouter(h *HTTPHandlerImpl) http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/plans", h.TreatmentPlan)
	r.Post("/v1/likelihoods", h.DiseaseLikelihoods)
	r.Post("/v1/clinics", h.Clinics)
	r.Post("/v1/diseases/{name}/medications", h.MedicationsForDisease)
	r.Post("/v1/age", h.Age)
	r.Get("/v1/reference", h.ReferenceSummary)
	r.Get("/health", h.HealthCheck)
	return r
}

const fluPatient = `{
	"name": "Jane Doe",
	"dateOfBirth": "1990-04-10",
	"weight": 70,
	"symptoms": ["fever", "cough", "fatigue"],
	"medicationAllergies": [],
	"mrn": "MRN-001"
}`

func do(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRespondWithJSON(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name         string
		payload      any
		expectedJSON string
	}{
		{"object payload", map[string]string{"message": "success"}, `{"message":"success"}`},
		{"empty payload", nil, `null`},
		{"array payload", []string{"item1", "item2"}, `["item1","item2"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.RespondWithJSON(rr, http.StatusOK, tt.payload)

			if rr.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Expected Content-Type application/json; charset=utf-8, got %s", ct)
			}
			if rr.Body.String() != tt.expectedJSON {
				t.Errorf("Expected body %s, got %s", tt.expectedJSON, rr.Body.String())
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	handler := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.RespondWithError(rr, http.StatusNotFound, "Disease not found")

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body["error"] != "Not Found" || body["message"] != "Disease not found" || body["code"] != float64(404) {
		t.Errorf("Unexpected error body: %v", body)
	}
}

func TestTreatmentPlan(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	rr := do(t, router, "POST", "/v1/plans", fluPatient)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var plan entities.TreatmentPlan
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}

	if plan.AgeInYears != 34 || plan.AgeInMonths != 2 {
		t.Errorf("Expected age 34y 2m, got %dy %dm", plan.AgeInYears, plan.AgeInMonths)
	}
	if len(plan.Clinics) != 1 || plan.Clinics[0].Name != "General" {
		t.Errorf("Expected only General clinic, got %+v", plan.Clinics)
	}
	if len(plan.Medications) != 1 || !plan.Medications["Paracetamol"].Equal(decimal.NewFromInt(700)) {
		t.Errorf("Expected Paracetamol 700mg, got %v", plan.Medications)
	}
	if len(plan.LikelyDiseases) != 1 || plan.LikelyDiseases[0] != "Flu" {
		t.Errorf("Expected likely diseases [Flu], got %v", plan.LikelyDiseases)
	}
}

// likelyHistogram reads the sample count and sum of the likely diseases histogram
func likelyHistogram(t *testing.T) (uint64, float64) {
	t.Helper()
	var out dto.Metric
	if err := metrics.LikelyDiseasesPerPlan.Write(&out); err != nil {
		t.Fatalf("Failed to read histogram: %v", err)
	}
	return out.GetHistogram().GetSampleCount(), out.GetHistogram().GetSampleSum()
}

func TestTreatmentPlanRecordsLikelyDiseases(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	countBefore, sumBefore := likelyHistogram(t)

	rr := do(t, router, "POST", "/v1/plans", fluPatient)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var plan entities.TreatmentPlan
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}

	count, sum := likelyHistogram(t)
	if count-countBefore != 1 {
		t.Errorf("Expected one observation, got %d", count-countBefore)
	}
	if sum-sumBefore != float64(len(plan.LikelyDiseases)) {
		t.Errorf("Expected observation %d, got %v", len(plan.LikelyDiseases), sum-sumBefore)
	}
}

func TestDiseaseLikelihoods(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	rr := do(t, router, "POST", "/v1/likelihoods", fluPatient)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var got map[string]decimal.Decimal
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("Failed to decode likelihoods: %v", err)
	}
	if !got["Flu"].Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected Flu likelihood 1, got %s", got["Flu"])
	}
	if !got["Migraine"].IsZero() {
		t.Errorf("Expected Migraine likelihood 0, got %s", got["Migraine"])
	}
}

func TestClinics(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	tests := []struct {
		name     string
		body     string
		expected []string
	}{
		{
			name:     "adult with flu",
			body:     fluPatient,
			expected: []string{"General"},
		},
		{
			name:     "child with flu",
			body:     `{"name":"Tim","dateOfBirth":"2020-01-01","weight":20,"symptoms":["fever","cough","fatigue"]}`,
			expected: []string{"General", "Pediatrics"},
		},
		{
			name:     "no likely disease",
			body:     `{"name":"Tim","dateOfBirth":"2020-01-01","weight":20,"symptoms":["fever"]}`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, "POST", "/v1/clinics", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}

			var clinics []entities.Clinic
			if err := json.Unmarshal(rr.Body.Bytes(), &clinics); err != nil {
				t.Fatalf("Failed to decode clinics: %v", err)
			}
			if clinics == nil {
				t.Fatal("Expected a JSON array, got null")
			}
			if len(clinics) != len(tt.expected) {
				t.Fatalf("Expected %d clinics, got %d", len(tt.expected), len(clinics))
			}
			for i, name := range tt.expected {
				if clinics[i].Name != name {
					t.Errorf("Clinic %d: expected %s, got %s", i, name, clinics[i].Name)
				}
			}
		})
	}
}

func TestMedicationsForDisease(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	tests := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		expected       map[string]int64
	}{
		{
			name:           "known disease",
			path:           "/v1/diseases/Migraine/medications",
			body:           fluPatient,
			expectedStatus: http.StatusOK,
			expected:       map[string]int64{"Ibuprofen": 350},
		},
		{
			name:           "allergic to the only combination",
			path:           "/v1/diseases/Migraine/medications",
			body:           `{"name":"Jane","dateOfBirth":"1990-04-10","weight":70,"symptoms":[],"medicationAllergies":["Ibuprofen"]}`,
			expectedStatus: http.StatusOK,
			expected:       map[string]int64{},
		},
		{
			name:           "unknown disease",
			path:           "/v1/diseases/Measles/medications",
			body:           fluPatient,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "dangerous disease name",
			path:           "/v1/diseases/%3Cscript%3E/medications",
			body:           fluPatient,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, "POST", tt.path, tt.body)
			if rr.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if tt.expected == nil {
				return
			}

			var got map[string]decimal.Decimal
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("Failed to decode medications: %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d medications, got %v", len(tt.expected), got)
			}
			for name, mg := range tt.expected {
				if !got[name].Equal(decimal.NewFromInt(mg)) {
					t.Errorf("Expected %s %dmg, got %s", name, mg, got[name])
				}
			}
		})
	}
}

func TestAge(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	rr := do(t, router, "POST", "/v1/age", fluPatient)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var age AgeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &age); err != nil {
		t.Fatalf("Failed to decode age: %v", err)
	}
	if age != (AgeResponse{Years: 34, Months: 2, TotalMonths: 410}) {
		t.Errorf("Unexpected age: %+v", age)
	}
}

func TestInvalidPatientBodies(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"empty body", ``, http.StatusBadRequest},
		{"malformed json", `{"name":`, http.StatusBadRequest},
		{"unknown field", `{"name":"Jane","dateOfBirth":"1990-04-10","weight":70,"ssn":"x"}`, http.StatusBadRequest},
		{"bad date format", `{"name":"Jane","dateOfBirth":"10/04/1990","weight":70}`, http.StatusBadRequest},
		{"future date of birth", `{"name":"Jane","dateOfBirth":"2030-01-01","weight":70}`, http.StatusBadRequest},
		{"zero weight", `{"name":"Jane","dateOfBirth":"1990-04-10","weight":0}`, http.StatusBadRequest},
		{"missing name", `{"dateOfBirth":"1990-04-10","weight":70}`, http.StatusBadRequest},
		{"dangerous symptom", `{"name":"Jane","dateOfBirth":"1990-04-10","weight":70,"symptoms":["<script>"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, "POST", "/v1/plans", tt.body)
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}

			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("Expected JSON error body, got %s", rr.Body.String())
			}
			if _, ok := body["message"]; !ok {
				t.Errorf("Expected message in error body: %v", body)
			}
		})
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("POST", "/v1/plans", strings.NewReader(fluPatient))
	rr := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rr, req.Body, 16)

	h.TreatmentPlan(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}
}

func TestReferenceSummary(t *testing.T) {
	router := newTestRouter(newTestHandler(t))

	rr := do(t, router, "GET", "/v1/reference", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var summary ReferenceSummary
	if err := json.Unmarshal(rr.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.Version == "" {
		t.Error("Expected a version")
	}
	if strings.Join(summary.Diseases, ",") != "Flu,Migraine" {
		t.Errorf("Unexpected diseases: %v", summary.Diseases)
	}
	if strings.Join(summary.Clinics, ",") != "General,Pediatrics" {
		t.Errorf("Unexpected clinics: %v", summary.Clinics)
	}
	if len(summary.Medications) != 2 {
		t.Errorf("Expected 2 medications, got %v", summary.Medications)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		checker    *stubHealthChecker
		wantStatus int
	}{
		{"healthy", &stubHealthChecker{status: "healthy", httpStatus: http.StatusOK}, http.StatusOK},
		{"unhealthy", &stubHealthChecker{status: "unhealthy", httpStatus: http.StatusServiceUnavailable}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			h.health = tt.checker

			rr := do(t, newTestRouter(h), "GET", "/health", "")
			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rr.Code)
			}

			var body HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode health: %v", err)
			}
			if body.Status != tt.checker.status {
				t.Errorf("Expected status %s, got %s", tt.checker.status, body.Status)
			}
		})
	}
}
