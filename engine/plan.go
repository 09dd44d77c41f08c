package engine

import (
	"github.com/giygas/treatment-plan-api/entities"
	"github.com/shopspring/decimal"
)

// TreatmentPlanForPatient combines age, eligible clinics and the medications
// of every likely disease. Dosages of a medication chosen for several
// diseases are summed. The likely disease names are listed in reference order.
func (e *TreatmentPlanEngine) TreatmentPlanForPatient(patient entities.Patient) entities.TreatmentPlan {
	rs := e.store.GetReferenceSet()
	months := monthsBetween(patient.DateOfBirth, e.clock.Now())
	likely := likelyDiseases(rs.UniqueDiseases, patient)

	names := make([]string, 0, len(likely))
	medications := make(map[string]decimal.Decimal)
	for _, d := range likely {
		names = append(names, d.Name)
		for name, dosage := range medicationsFor(patient, d, rs.MedicationsByName) {
			if total, ok := medications[name]; ok {
				medications[name] = total.Add(dosage)
			} else {
				medications[name] = dosage
			}
		}
	}

	return entities.TreatmentPlan{
		AgeInYears:     months / 12,
		AgeInMonths:    months % 12,
		LikelyDiseases: names,
		Clinics:        eligibleClinics(rs.Clinics, likely, months),
		Medications:    medications,
	}
}
