package engine

import (
	"github.com/giygas/treatment-plan-api/entities"
)

// ClinicsBasedOnAgeAndDiseases returns the clinics whose age range contains
// the patient's age in months and that specialize in at least one disease
// likely for the patient, in reference order.
func (e *TreatmentPlanEngine) ClinicsBasedOnAgeAndDiseases(patient entities.Patient) []entities.Clinic {
	rs := e.store.GetReferenceSet()
	months := monthsBetween(patient.DateOfBirth, e.clock.Now())
	return eligibleClinics(rs.Clinics, likelyDiseases(rs.UniqueDiseases, patient), months)
}

func eligibleClinics(clinics []entities.Clinic, likely []entities.Disease, ageInMonths int) []entities.Clinic {
	names := make(map[string]struct{}, len(likely))
	for _, d := range likely {
		names[d.Name] = struct{}{}
	}

	result := make([]entities.Clinic, 0)
	for _, c := range clinics {
		if c.AcceptsAgeInMonths(ageInMonths) && c.TreatsAny(names) {
			result = append(result, c)
		}
	}
	return result
}
