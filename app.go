package main

import (
	"github.com/giygas/treatment-plan-api/config"
	"github.com/giygas/treatment-plan-api/data"
	"github.com/giygas/treatment-plan-api/engine"
	"github.com/giygas/treatment-plan-api/handlers"
	"github.com/giygas/treatment-plan-api/health"
	"github.com/giygas/treatment-plan-api/referenceparser"
	"github.com/giygas/treatment-plan-api/scheduler"
	"github.com/giygas/treatment-plan-api/server"
	"github.com/giygas/treatment-plan-api/validation"
)

// application holds the wired components of the service
type application struct {
	store     *data.ReferenceContainer
	planner   *engine.TreatmentPlanEngine
	scheduler *scheduler.Scheduler
	server    *server.Server
}

// newApplication wires storage, engine, loading and HTTP together.
// Nothing is loaded or started yet.
func newApplication(cfg *config.Config, opts ...engine.Option) *application {
	store := data.NewReferenceContainer()
	planner := engine.NewTreatmentPlanEngine(append([]engine.Option{engine.WithDataStore(store)}, opts...)...)
	validator := validation.NewDataValidator()
	parser := referenceparser.NewReferenceParser(cfg.DataDir)

	reloadTimes := cfg.ReloadTimeList()
	healthChecker := health.NewHealthChecker(store, reloadTimes)
	handler := handlers.NewHTTPHandler(planner, store, validator, healthChecker)

	return &application{
		store:     store,
		planner:   planner,
		scheduler: scheduler.NewScheduler(store, parser, validator, reloadTimes),
		server:    server.NewServer(cfg, handler),
	}
}
