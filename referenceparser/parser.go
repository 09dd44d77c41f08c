package referenceparser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/giygas/treatment-plan-api/entities"
	"github.com/giygas/treatment-plan-api/interfaces"
	"github.com/giygas/treatment-plan-api/logging"
	"github.com/shopspring/decimal"
)

const (
	MedicationsFile = "medications.tsv"
	DiseasesFile    = "diseases.tsv"
	ClinicsFile     = "clinics.tsv"
)

var (
	ErrMissingColumns = errors.New("missing columns")
	ErrInvalidNumber  = errors.New("invalid number")
)

// Compile-time check to ensure ReferenceParser implements Parser interface
var _ interfaces.Parser = (*ReferenceParser)(nil)

// ReferenceParser implements the Parser interface over a data directory
type ReferenceParser struct {
	dataDir string
}

// NewReferenceParser creates a parser reading from dataDir
func NewReferenceParser(dataDir string) *ReferenceParser {
	return &ReferenceParser{dataDir: dataDir}
}

// ParseReferenceData reads the three reference files. Malformed lines are
// skipped and counted; an unreadable file fails the whole parse.
func (p *ReferenceParser) ParseReferenceData() ([]entities.Disease, []entities.Clinic, []entities.Medication, error) {
	medications, err := parseFile(filepath.Join(p.dataDir, MedicationsFile), parseMedication)
	if err != nil {
		return nil, nil, nil, err
	}

	diseases, err := parseFile(filepath.Join(p.dataDir, DiseasesFile), parseDisease)
	if err != nil {
		return nil, nil, nil, err
	}

	clinics, err := parseFile(filepath.Join(p.dataDir, ClinicsFile), parseClinic)
	if err != nil {
		return nil, nil, nil, err
	}

	logging.Info("Reference data parsed",
		"diseases", len(diseases),
		"clinics", len(clinics),
		"medications", len(medications),
	)

	return diseases, clinics, medications, nil
}

func parseFile[T any](path string, parseLine func(fields []string) (T, error)) ([]T, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(lines))
	skippedMissingColumns := 0
	skippedFormatErrors := 0

	for i, line := range lines {
		record, err := parseLine(strings.Split(line, "\t"))
		if err != nil {
			if errors.Is(err, ErrMissingColumns) {
				skippedMissingColumns++
			} else {
				skippedFormatErrors++
			}
			logging.Debug("Skipping reference line", "file", filepath.Base(path), "line", i+1, "error", err)
			continue
		}
		records = append(records, record)
	}

	if skippedMissingColumns > 0 || skippedFormatErrors > 0 {
		logging.Warn("Reference lines skipped",
			"file", filepath.Base(path),
			"missing_columns", skippedMissingColumns,
			"format_errors", skippedFormatErrors,
		)
	}

	return records, nil
}

// parseMedication reads `name<TAB>costPerMg`
func parseMedication(fields []string) (entities.Medication, error) {
	if len(fields) < 2 {
		return entities.Medication{}, ErrMissingColumns
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return entities.Medication{}, fmt.Errorf("empty medication name")
	}

	cost, err := parseDecimal(fields[1])
	if err != nil {
		return entities.Medication{}, err
	}

	return entities.Medication{Name: name, CostPerMg: cost}, nil
}

// parseDisease reads `name<TAB>sym1,sym2<TAB>MedA:2.5,MedB:1|MedC:3`.
// The combinations column may be omitted.
func parseDisease(fields []string) (entities.Disease, error) {
	if len(fields) < 2 {
		return entities.Disease{}, ErrMissingColumns
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return entities.Disease{}, fmt.Errorf("empty disease name")
	}

	disease := entities.Disease{
		Name:     name,
		Symptoms: splitList(fields[1]),
	}

	if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
		for _, group := range strings.Split(fields[2], "|") {
			combination, err := parseCombination(group)
			if err != nil {
				return entities.Disease{}, fmt.Errorf("disease %q: %w", name, err)
			}
			disease.MedicationCombinations = append(disease.MedicationCombinations, combination)
		}
	}

	return disease, nil
}

// combinationEntries splits `MedA:2,5,MedB:1` into its `name:dosage` entries.
// A piece without ':' is the decimal part of the previous dosage.
func combinationEntries(group string) []string {
	var entries []string
	for _, piece := range splitList(group) {
		if !strings.Contains(piece, ":") && len(entries) > 0 {
			entries[len(entries)-1] += "," + piece
			continue
		}
		entries = append(entries, piece)
	}
	return entries
}

func parseCombination(group string) (entities.MedicationCombination, error) {
	combination := entities.MedicationCombination{}
	for _, entry := range combinationEntries(group) {
		med, dosage, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("malformed combination entry %q", entry)
		}
		med = strings.TrimSpace(med)
		if med == "" {
			return nil, fmt.Errorf("malformed combination entry %q", entry)
		}
		perKg, err := parseDecimal(dosage)
		if err != nil {
			return nil, err
		}
		combination[med] = perKg
	}

	if len(combination) == 0 {
		return nil, fmt.Errorf("empty combination")
	}
	return combination, nil
}

// parseClinic reads `name<TAB>minAgeMonths<TAB>maxAgeMonths<TAB>disease1,disease2`.
// An empty maximum means no upper bound.
func parseClinic(fields []string) (entities.Clinic, error) {
	if len(fields) < 4 {
		return entities.Clinic{}, ErrMissingColumns
	}

	name := strings.TrimSpace(fields[0])
	if name == "" {
		return entities.Clinic{}, fmt.Errorf("empty clinic name")
	}

	minAge, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return entities.Clinic{}, fmt.Errorf("%w: minimum age %q", ErrInvalidNumber, fields[1])
	}

	clinic := entities.Clinic{
		Name:           name,
		MinAgeInMonths: minAge,
		Diseases:       splitList(fields[3]),
	}

	if maxField := strings.TrimSpace(fields[2]); maxField != "" {
		maxAge, err := strconv.Atoi(maxField)
		if err != nil {
			return entities.Clinic{}, fmt.Errorf("%w: maximum age %q", ErrInvalidNumber, fields[2])
		}
		clinic.MaxAgeInMonths = &maxAge
	}

	return clinic, nil
}

// parseDecimal accepts both "1.5" and the comma decimal separator "1,5"
func parseDecimal(field string) (decimal.Decimal, error) {
	value := strings.ReplaceAll(strings.TrimSpace(field), ",", ".")
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, field)
	}
	return d, nil
}
