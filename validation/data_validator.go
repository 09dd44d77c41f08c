// Package validation provides reference data and patient input validation
// for the treatment plan API.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/interfaces"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidReference wraps every reference data validation failure
	ErrInvalidReference = errors.New("invalid reference data")
	// ErrInvalidPatient wraps every patient validation failure
	ErrInvalidPatient = errors.New("invalid patient")
)

// Pre-compiled patterns, compiled once at package initialization
var (
	// letters (including accented), digits, spaces and safe punctuation
	inputRegex = regexp.MustCompile(`^[\p{L}0-9\s\-\.\+'(),/]+$`)

	// substring checks are cheaper than regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "$(", "${", "`",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:",
	}
)

const (
	maxNameLength  = 100
	maxInputLength = 100
	maxListItems   = 64
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateDisease checks a disease reference entry
func (v *DataValidatorImpl) ValidateDisease(d *entities.Disease) error {
	if d == nil {
		return fmt.Errorf("%w: disease is nil", ErrInvalidReference)
	}
	if err := validateName(d.Name); err != nil {
		return fmt.Errorf("%w: disease: %v", ErrInvalidReference, err)
	}

	// likelihood is undefined without symptoms
	if len(d.Symptoms) == 0 {
		return fmt.Errorf("%w: disease %q has no symptoms", ErrInvalidReference, d.Name)
	}
	for _, s := range d.Symptoms {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: disease %q has an empty symptom", ErrInvalidReference, d.Name)
		}
	}

	for i, combination := range d.MedicationCombinations {
		if len(combination) == 0 {
			return fmt.Errorf("%w: disease %q combination %d is empty", ErrInvalidReference, d.Name, i)
		}
		for med, perKg := range combination {
			if strings.TrimSpace(med) == "" {
				return fmt.Errorf("%w: disease %q combination %d has an unnamed medication", ErrInvalidReference, d.Name, i)
			}
			if perKg.IsNegative() {
				return fmt.Errorf("%w: disease %q combination %d: negative dosage %s for %s",
					ErrInvalidReference, d.Name, i, perKg, med)
			}
		}
	}

	return nil
}

// ValidateMedication checks a medication reference entry
func (v *DataValidatorImpl) ValidateMedication(m *entities.Medication) error {
	if m == nil {
		return fmt.Errorf("%w: medication is nil", ErrInvalidReference)
	}
	if err := validateName(m.Name); err != nil {
		return fmt.Errorf("%w: medication: %v", ErrInvalidReference, err)
	}
	if m.CostPerMg.IsNegative() {
		return fmt.Errorf("%w: medication %q has negative cost %s", ErrInvalidReference, m.Name, m.CostPerMg)
	}
	return nil
}

// ValidateClinic checks a clinic reference entry
func (v *DataValidatorImpl) ValidateClinic(c *entities.Clinic) error {
	if c == nil {
		return fmt.Errorf("%w: clinic is nil", ErrInvalidReference)
	}
	if err := validateName(c.Name); err != nil {
		return fmt.Errorf("%w: clinic: %v", ErrInvalidReference, err)
	}
	if c.MinAgeInMonths < 0 {
		return fmt.Errorf("%w: clinic %q has negative minimum age %d", ErrInvalidReference, c.Name, c.MinAgeInMonths)
	}
	if c.MaxAgeInMonths != nil && *c.MaxAgeInMonths < c.MinAgeInMonths {
		return fmt.Errorf("%w: clinic %q maximum age %d is below minimum age %d",
			ErrInvalidReference, c.Name, *c.MaxAgeInMonths, c.MinAgeInMonths)
	}
	return nil
}

// ValidateReferenceSet validates every entity and stops at the first error
func (v *DataValidatorImpl) ValidateReferenceSet(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication) error {
	for i := range diseases {
		if err := v.ValidateDisease(&diseases[i]); err != nil {
			return err
		}
	}
	for i := range medications {
		if err := v.ValidateMedication(&medications[i]); err != nil {
			return err
		}
	}
	for i := range clinics {
		if err := v.ValidateClinic(&clinics[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReportDataQuality collects cross-entity issues. It never fails; the
// scheduler logs what it finds.
func (v *DataValidatorImpl) ReportDataQuality(diseases []entities.Disease, clinics []entities.Clinic, medications []entities.Medication) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{}

	diseaseNames := make(map[string]int, len(diseases))
	medicationNames := make(map[string]int, len(medications))
	clinicNames := make(map[string]int, len(clinics))

	for _, m := range medications {
		medicationNames[m.Name]++
	}
	for _, c := range clinics {
		clinicNames[c.Name]++
	}

	unknownMeds := map[string]struct{}{}
	for _, d := range diseases {
		diseaseNames[d.Name]++
		if len(d.Symptoms) == 0 {
			report.DiseasesWithoutSymptoms = append(report.DiseasesWithoutSymptoms, d.Name)
		}
		if len(d.MedicationCombinations) == 0 {
			report.DiseasesWithoutTreatment = append(report.DiseasesWithoutTreatment, d.Name)
		}
		for _, combination := range d.MedicationCombinations {
			for med := range combination {
				if _, ok := medicationNames[med]; !ok {
					unknownMeds[med] = struct{}{}
				}
			}
		}
	}

	unknownClinicDiseases := map[string]struct{}{}
	for _, c := range clinics {
		for _, d := range c.Diseases {
			if _, ok := diseaseNames[d]; !ok {
				unknownClinicDiseases[d] = struct{}{}
			}
		}
	}

	report.DuplicateDiseases = duplicates(diseaseNames)
	report.DuplicateMedications = duplicates(medicationNames)
	report.DuplicateClinics = duplicates(clinicNames)
	report.UnknownMedications = sortedKeys(unknownMeds)
	report.UnknownClinicDiseases = sortedKeys(unknownClinicDiseases)

	return report
}

// ValidatePatient checks patient input received over HTTP
func (v *DataValidatorImpl) ValidatePatient(p *entities.Patient, now time.Time) error {
	if p == nil {
		return fmt.Errorf("%w: patient is nil", ErrInvalidPatient)
	}
	if err := validateName(p.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatient, err)
	}
	if p.DateOfBirth.IsZero() {
		return fmt.Errorf("%w: date of birth is required", ErrInvalidPatient)
	}
	if p.DateOfBirth.After(now) {
		return fmt.Errorf("%w: date of birth %s is in the future", ErrInvalidPatient, p.DateOfBirth.Format(time.DateOnly))
	}
	if !p.Weight.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: weight must be positive, got %s", ErrInvalidPatient, p.Weight)
	}
	if len(p.Symptoms) > maxListItems || len(p.MedicationAllergies) > maxListItems {
		return fmt.Errorf("%w: too many symptoms or allergies (max %d)", ErrInvalidPatient, maxListItems)
	}
	for _, s := range p.Symptoms {
		if err := v.ValidateInput(s); err != nil {
			return fmt.Errorf("%w: symptom %q: %v", ErrInvalidPatient, s, err)
		}
	}
	for _, a := range p.MedicationAllergies {
		if err := v.ValidateInput(a); err != nil {
			return fmt.Errorf("%w: allergy %q: %v", ErrInvalidPatient, a, err)
		}
	}
	return nil
}

// ValidateInput validates user supplied strings
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > maxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", maxInputLength)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters")
	}

	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("name too long: %d characters", len(name))
	}
	return nil
}

func duplicates(counts map[string]int) []string {
	var out []string
	for name, n := range counts {
		if n > 1 {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	var out []string
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
