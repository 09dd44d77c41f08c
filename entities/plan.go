package entities

import "github.com/shopspring/decimal"

// TreatmentPlan is the derived recommendation for one patient.
type TreatmentPlan struct {
	AgeInYears     int                        `json:"ageInYears"`
	AgeInMonths    int                        `json:"ageInMonths"` // remainder, 0-11
	LikelyDiseases []string                   `json:"likelyDiseases"`
	Clinics        []Clinic                   `json:"clinics"`
	Medications    map[string]decimal.Decimal `json:"medications"` // name -> total mg
}
