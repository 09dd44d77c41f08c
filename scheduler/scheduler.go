// Package scheduler loads the reference data at startup, reloads it at the
// configured times of day and warns when the loaded data goes stale.
package scheduler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/giygas/treatment-plan-api/interfaces"
	"github.com/giygas/treatment-plan-api/logging"
	"github.com/giygas/treatment-plan-api/metrics"
	"github.com/go-co-op/gocron"
)

// StaleAfter is how old the loaded reference data may get before the
// monitor starts warning
const StaleAfter = 25 * time.Hour

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles reference data reloads and staleness monitoring
type Scheduler struct {
	dataStore   interfaces.DataStore
	parser      interfaces.Parser
	validator   interfaces.DataValidator
	reloadTimes []string
	scheduler   *gocron.Scheduler

	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// reloadTimes are HH:MM entries in local time.
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser, validator interfaces.DataValidator, reloadTimes []string) *Scheduler {
	return &Scheduler{
		dataStore:   dataStore,
		parser:      parser,
		validator:   validator,
		reloadTimes: reloadTimes,
		scheduler:   gocron.NewScheduler(time.Local),
		done:        make(chan struct{}),
	}
}

// Start performs the initial load, then schedules the daily reloads
func (s *Scheduler) Start() error {
	if err := s.Reload(); err != nil {
		logging.Error("Failed to perform initial reference data load", "error", err)
		return fmt.Errorf("initial reference data load failed: %w", err)
	}

	if len(s.reloadTimes) == 0 {
		return fmt.Errorf("no reload times configured")
	}

	_, err := s.scheduler.Every(1).Days().At(strings.Join(s.reloadTimes, ";")).Do(func() {
		if err := s.Reload(); err != nil {
			logging.Error("Failed to reload reference data, keeping previous set", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	s.scheduler.StartAsync()
	s.startStalenessMonitor(time.Hour)

	logging.Info("Reference reload scheduled", "times", s.reloadTimes)
	return nil
}

// Stop stops the scheduled reloads and the staleness monitor
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.scheduler.Stop()
	})
}

// Reload parses, validates and swaps in a new reference set. A failed parse
// or validation leaves the current set in place.
func (s *Scheduler) Reload() error {
	// Prevent concurrent reloads
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reload already in progress, skipping")
		metrics.ReferenceReloadTotal.WithLabelValues("skipped").Inc()
		return nil
	}
	defer s.dataStore.EndUpdate()

	start := time.Now()
	logging.Info("Starting reference data reload", "started_at", start.Format(time.RFC3339))

	diseases, clinics, medications, err := s.parser.ParseReferenceData()
	if err != nil {
		metrics.ReferenceReloadTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to parse reference data: %w", err)
	}

	if err := s.validator.ValidateReferenceSet(diseases, clinics, medications); err != nil {
		metrics.ReferenceReloadTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("reference data rejected: %w", err)
	}

	logQualityReport(s.validator.ReportDataQuality(diseases, clinics, medications))

	s.dataStore.UpdateData(diseases, clinics, medications)

	metrics.RecordReferenceSet(len(diseases), len(clinics), len(medications))
	metrics.ReferenceReloadTotal.WithLabelValues("success").Inc()

	logging.Info("Reference data reload completed",
		"duration", time.Since(start).String(),
		"diseases", len(diseases),
		"clinics", len(clinics),
		"medications", len(medications),
	)
	return nil
}

func logQualityReport(report *interfaces.DataQualityReport) {
	if report == nil || !report.HasIssues() {
		return
	}

	if len(report.DuplicateDiseases) > 0 {
		logging.Warn("Duplicate diseases detected, first entry wins", "names", report.DuplicateDiseases)
	}
	if len(report.DuplicateMedications) > 0 {
		logging.Warn("Duplicate medications detected, first entry wins", "names", report.DuplicateMedications)
	}
	if len(report.DuplicateClinics) > 0 {
		logging.Warn("Duplicate clinics detected", "names", report.DuplicateClinics)
	}
	if len(report.DiseasesWithoutSymptoms) > 0 {
		logging.Warn("Diseases without symptoms", "names", report.DiseasesWithoutSymptoms)
	}
	if len(report.DiseasesWithoutTreatment) > 0 {
		logging.Warn("Diseases without medication combinations", "names", report.DiseasesWithoutTreatment)
	}
	if len(report.UnknownMedications) > 0 {
		logging.Warn("Combinations reference unpriced medications", "names", report.UnknownMedications)
	}
	if len(report.UnknownClinicDiseases) > 0 {
		logging.Warn("Clinics reference unknown diseases", "names", report.UnknownClinicDiseases)
	}
}

// startStalenessMonitor warns when the data has not been refreshed recently
func (s *Scheduler) startStalenessMonitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				if isStale(s.dataStore.GetLastUpdated(), time.Now()) {
					logging.Warn("Reference data hasn't been updated recently",
						"last_updated", s.dataStore.GetLastUpdated().Format(time.RFC3339),
						"threshold", StaleAfter.String(),
					)
				}
			}
		}
	}()
}

func isStale(lastUpdated, now time.Time) bool {
	return now.Sub(lastUpdated) > StaleAfter
}
