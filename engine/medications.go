package engine

import (
	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/logging"
	"github.com/shopspring/decimal"
)

// MedicationsForDisease picks the cheapest medication combination for the
// disease that contains none of the patient's allergens, and returns its
// dosages scaled by the patient's weight (mg/kg * kg = mg).
//
// A combination holding any allergen is dropped whole. The first surviving
// combination is always taken; a later one replaces it only when strictly
// cheaper. Medications missing from the reference list have no price and
// are left out of both the cost and the result.
func (e *TreatmentPlanEngine) MedicationsForDisease(patient entities.Patient, disease entities.Disease) map[string]decimal.Decimal {
	return medicationsFor(patient, disease, e.store.GetMedicationsMap())
}

func medicationsFor(patient entities.Patient, disease entities.Disease, priced map[string]entities.Medication) map[string]decimal.Decimal {
	var (
		best     map[string]decimal.Decimal
		bestCost decimal.Decimal
		found    bool
	)

	for i, combination := range disease.MedicationCombinations {
		if containsAllergen(patient, combination) {
			continue
		}

		dosages, cost := priceCombination(combination, patient.Weight, priced, disease.Name)
		if !found || cost.LessThan(bestCost) {
			best, bestCost, found = dosages, cost, true
			logging.Debug("Cheaper medication combination",
				"disease", disease.Name, "combination", i, "cost", cost.String())
		}
	}

	if !found {
		return map[string]decimal.Decimal{}
	}
	return best
}

func containsAllergen(patient entities.Patient, combination entities.MedicationCombination) bool {
	for name := range combination {
		if patient.IsAllergicTo(name) {
			return true
		}
	}
	return false
}

// priceCombination scales each dosage by weight and sums cost per mg times dosage
func priceCombination(combination entities.MedicationCombination, weight decimal.Decimal,
	priced map[string]entities.Medication, disease string) (map[string]decimal.Decimal, decimal.Decimal) {

	dosages := make(map[string]decimal.Decimal, len(combination))
	cost := decimal.Zero

	for name, perKg := range combination {
		med, ok := priced[name]
		if !ok {
			logging.Debug("Medication not in reference list, skipped", "disease", disease, "medication", name)
			continue
		}
		dosage := perKg.Mul(weight)
		dosages[name] = dosage
		cost = cost.Add(med.CostPerMg.Mul(dosage))
	}

	return dosages, cost
}
