// internal/scheduler/scheduler.go
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/user/draftgen/internal/state"
)

// Handler is the callback invoked when a scheduled plan fires.
type Handler func(plan *state.Plan)

// Scheduler evaluates cron expressions from the plan store and fires plans
// through a handler callback.
type Scheduler struct {
	store   *state.PlanStore
	handler Handler
	cron    *cron.Cron
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a new Scheduler backed by the given plan store. The handler
// is called each time a scheduled plan fires.
func New(store *state.PlanStore, handler Handler) *Scheduler {
	return &Scheduler{
		store:   store,
		handler: handler,
		cron:    cron.New(cron.WithParser(cronParser)),
	}
}

// Start loads plans from the store, registers enabled plans that have a
// schedule as cron entries, and starts the cron ticker.
func (s *Scheduler) Start() error {
	plans, err := s.store.List()
	if err != nil {
		return err
	}

	for _, plan := range plans {
		if plan.Schedule == "" || !plan.Enabled {
			continue
		}

		// Capture the plan value for the closure.
		fired := *plan

		_, err := s.cron.AddFunc(plan.Schedule, func() {
			slog.Info("cron firing plan", "name", fired.Name, "schedule", fired.Schedule)
			s.handler(&fired)
		})
		if err != nil {
			slog.Error("invalid cron schedule", "name", plan.Name, "schedule", plan.Schedule, "error", err)
			continue
		}
		slog.Info("scheduled plan", "name", plan.Name, "schedule", plan.Schedule)
	}

	s.cron.Start()
	return nil
}

// Reload stops the existing cron, creates a new one, and calls Start() again.
func (s *Scheduler) Reload() error {
	s.cron.Stop()
	s.cron = cron.New(cron.WithParser(cronParser))
	return s.Start()
}

// Stop stops the cron ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
