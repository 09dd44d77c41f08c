package engine

import (
	"time"

	"github.com/giygas/treatment-plan-api/entities"
)

// AgeInYears returns the whole years between the patient's birth date and today
func (e *TreatmentPlanEngine) AgeInYears(patient entities.Patient) int {
	return monthsBetween(patient.DateOfBirth, e.clock.Now()) / 12
}

// AgeInMonths returns the whole months between the patient's birth date and today
func (e *TreatmentPlanEngine) AgeInMonths(patient entities.Patient) int {
	return monthsBetween(patient.DateOfBirth, e.clock.Now())
}

// monthsBetween counts complete calendar months from birth to now. A month
// is complete once the day of month reaches the birth day; a birth date in
// the future counts as zero.
func monthsBetween(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()

	months := (ny-by)*12 + int(nm-bm)
	if nd < bd {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
