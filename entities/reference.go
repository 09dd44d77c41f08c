package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MedicationCombination maps a medication name to its dosage in mg/kg.
type MedicationCombination map[string]decimal.Decimal

// Disease is static reference data describing a disease by its symptoms and
// the medication combinations that treat it.
type Disease struct {
	Name                   string                  `json:"name"`
	Symptoms               []string                `json:"symptoms"`
	MedicationCombinations []MedicationCombination `json:"medicationCombinations"`
}

// Medication is static reference data with a cost per mg.
type Medication struct {
	Name      string          `json:"name"`
	CostPerMg decimal.Decimal `json:"costPerMg"`
}

// Clinic is static reference data. A nil MaxAgeInMonths means no upper bound.
type Clinic struct {
	Name           string   `json:"name"`
	MinAgeInMonths int      `json:"minAgeInMonths"`
	MaxAgeInMonths *int     `json:"maxAgeInMonths,omitempty"`
	Diseases       []string `json:"diseases"`
}

// AcceptsAgeInMonths checks the age against the clinic range, both bounds inclusive
func (c Clinic) AcceptsAgeInMonths(months int) bool {
	if months < c.MinAgeInMonths {
		return false
	}
	return c.MaxAgeInMonths == nil || months <= *c.MaxAgeInMonths
}

// TreatsAny reports whether the clinic specializes in at least one of the diseases
func (c Clinic) TreatsAny(diseases map[string]struct{}) bool {
	for _, d := range c.Diseases {
		if _, ok := diseases[d]; ok {
			return true
		}
	}
	return false
}

// ReferenceSet is an immutable snapshot of the reference lists loaded into
// the engine. A new snapshot replaces the previous one wholesale.
type ReferenceSet struct {
	Version           uuid.UUID             `json:"version"`
	Diseases          []Disease             `json:"diseases"`
	Clinics           []Clinic              `json:"clinics"`
	Medications       []Medication          `json:"medications"`
	MedicationsByName map[string]Medication `json:"-"`
	DiseasesByName    map[string]Disease    `json:"-"`
	UniqueDiseases    []Disease             `json:"-"` // first entry per name, reference order
	LoadedAt          time.Time             `json:"loadedAt"`
}

// NewReferenceSet copies the given lists and indexes them by name.
// For duplicated names the first entry wins the index.
func NewReferenceSet(diseases []Disease, clinics []Clinic, medications []Medication, loadedAt time.Time) *ReferenceSet {
	rs := &ReferenceSet{
		Version:           uuid.New(),
		Diseases:          append(make([]Disease, 0, len(diseases)), diseases...),
		Clinics:           append(make([]Clinic, 0, len(clinics)), clinics...),
		Medications:       append(make([]Medication, 0, len(medications)), medications...),
		MedicationsByName: make(map[string]Medication, len(medications)),
		DiseasesByName:    make(map[string]Disease, len(diseases)),
		LoadedAt:          loadedAt,
	}

	for _, m := range rs.Medications {
		if _, exists := rs.MedicationsByName[m.Name]; !exists {
			rs.MedicationsByName[m.Name] = m
		}
	}
	for _, d := range rs.Diseases {
		if _, exists := rs.DiseasesByName[d.Name]; !exists {
			rs.DiseasesByName[d.Name] = d
			rs.UniqueDiseases = append(rs.UniqueDiseases, d)
		}
	}

	return rs
}
