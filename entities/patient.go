// Package entities holds the value types shared by the treatment plan engine,
// the reference data parser and the HTTP layer.
package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patient is the input to every engine query. It is never modified.
type Patient struct {
	Name                string          `json:"name"`
	DateOfBirth         time.Time       `json:"dateOfBirth"`
	Weight              decimal.Decimal `json:"weight"` // kg
	Symptoms            []string        `json:"symptoms"`
	MedicationAllergies []string        `json:"medicationAllergies"`
	MRN                 string          `json:"mrn"`
}

// SymptomSet returns the patient's symptoms as a set
func (p Patient) SymptomSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Symptoms))
	for _, s := range p.Symptoms {
		set[s] = struct{}{}
	}
	return set
}

// IsAllergicTo reports whether the medication name appears in the allergy list
func (p Patient) IsAllergicTo(medication string) bool {
	for _, a := range p.MedicationAllergies {
		if a == medication {
			return true
		}
	}
	return false
}
