package engine

import (
	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/logging"
	"github.com/shopspring/decimal"
)

const likelihoodPlaces = 2

// DiseaseLikelihoods scores every reference disease by the share of its
// symptoms the patient presents, rounded half away from zero to two places.
//
// A disease without symptoms has no defined likelihood: it is left out of
// the result and reported through the logger. When names repeat, only the
// first disease with that name is scored.
func (e *TreatmentPlanEngine) DiseaseLikelihoods(patient entities.Patient) map[string]decimal.Decimal {
	return likelihoods(e.store.GetReferenceSet().UniqueDiseases, patient)
}

func likelihoods(diseases []entities.Disease, patient entities.Patient) map[string]decimal.Decimal {
	present := patient.SymptomSet()
	result := make(map[string]decimal.Decimal, len(diseases))

	for _, d := range diseases {
		l, ok := likelihood(d, present)
		if !ok {
			logging.Warn("Disease has no symptoms, likelihood undefined", "disease", d.Name)
			continue
		}
		result[d.Name] = l
	}

	return result
}

// likelihood returns false when the disease lists no symptoms
func likelihood(d entities.Disease, present map[string]struct{}) (decimal.Decimal, bool) {
	seen := make(map[string]struct{}, len(d.Symptoms))
	matched := 0
	for _, s := range d.Symptoms {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := present[s]; ok {
			matched++
		}
	}

	if len(seen) == 0 {
		return decimal.Zero, false
	}

	return decimal.NewFromInt(int64(matched)).DivRound(decimal.NewFromInt(int64(len(seen))), likelihoodPlaces), true
}

// likelyDiseases returns the diseases meeting the threshold, in reference order.
// Callers pass ReferenceSet.UniqueDiseases.
func likelyDiseases(diseases []entities.Disease, patient entities.Patient) []entities.Disease {
	present := patient.SymptomSet()

	var likely []entities.Disease
	for _, d := range diseases {
		if l, ok := likelihood(d, present); ok && IsLikely(l) {
			likely = append(likely, d)
		}
	}
	return likely
}
