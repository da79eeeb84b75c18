// Package scheduler runs the polling loop that fires each user's weekly
// schedules at most once per schedule per calendar day.
package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

// ScheduleStore supplies the schedules and their owners. Read-only here;
// schedules are authored through the HTTP surface.
type ScheduleStore interface {
	GetAllSchedules() ([]*domain.Schedule, error)
	GetUserByID(id int64) (*domain.User, error)
}

// MarkerLog is the append-only per-day execution record. HasRunOn is the
// idempotency guard; MarkRun must be safe to call twice for the same day.
type MarkerLog interface {
	HasRunOn(scheduleID int64, runDate string) (bool, error)
	MarkRun(scheduleID int64, runDate string) error
}

// Pipeline is the retrieval-and-notification callback the loop drives.
// RefreshRecords runs once per due batch, NotifyUser once per due schedule.
// Both report trouble through their error return, never by panicking.
type Pipeline interface {
	RefreshRecords(ctx context.Context) error
	NotifyUser(ctx context.Context, user *domain.User) error
}

// Reporter receives operator-facing notifications about failed runs. It is
// best effort; its own errors are only logged.
type Reporter interface {
	Report(ctx context.Context, subject, detail string) error
}

type Scheduler struct {
	cfg      *config.Config
	store    ScheduleStore
	markers  MarkerLog
	pipeline Pipeline
	reporter Reporter
	logger   *slog.Logger

	now func() time.Time

	// per-day failure counts, keyed by schedule ID. Reset at local midnight
	// rollover. Once a schedule hits the cap it stays quiet until the next
	// day; the counter is in-memory because only one scheduler is active.
	failures   map[int64]int
	failureDay string
}

func New(cfg *config.Config, store ScheduleStore, markers MarkerLog, pipeline Pipeline, reporter Reporter) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		store:    store,
		markers:  markers,
		pipeline: pipeline,
		reporter: reporter,
		logger:   slog.Default(),
		now:      time.Now,
		failures: make(map[int64]int),
	}
}

// Run polls until ctx is cancelled. Iterations never overlap: each one
// finishes all due work before the next tick is considered.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", "pollInterval", s.cfg.Scheduler.PollInterval)

	ticker := time.NewTicker(time.Duration(s.cfg.Scheduler.PollInterval) * time.Second)
	defer ticker.Stop()

	for {
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// runOnce is one poll iteration. Nothing in here is allowed to end the
// loop: every error is logged or reported and the schedule in question is
// simply picked up again on a later poll.
func (s *Scheduler) runOnce(ctx context.Context) {
	now := s.now()
	today := now.Format("2006-01-02")
	weekday := now.Weekday()

	if s.failureDay != today {
		s.failures = make(map[int64]int)
		s.failureDay = today
	}

	schedules, err := s.store.GetAllSchedules()
	if err != nil {
		s.logger.Error("cannot load schedules", "error", err)
		return
	}

	due := make([]*domain.Schedule, 0)
	for _, schedule := range schedules {
		if s.isDue(schedule, now, today, weekday) {
			due = append(due, schedule)
		}
	}

	if len(due) == 0 {
		return
	}

	s.logger.Info("schedules due", "count", len(due), "date", today, "weekday", weekday.String())

	// one upstream refresh for the whole batch; every user below reads the
	// snapshot this call produced
	refreshCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Scheduler.PipelineTimeout)*time.Second)
	err = s.pipeline.RefreshRecords(refreshCtx)
	cancel()
	if err != nil {
		s.logger.Error("record refresh failed", "error", err)
		s.report(ctx, "record refresh failed", err.Error())
		return
	}

	for _, schedule := range due {
		s.dispatch(ctx, schedule, today)
	}
}

// isDue applies the fire-after rule: a schedule is due when the wall clock
// has passed its configured time of day, it has not fired today yet, and it
// has retries left.
func (s *Scheduler) isDue(schedule *domain.Schedule, now time.Time, today string, weekday time.Weekday) bool {
	timeOfDay := schedule.TimeFor(weekday)
	if timeOfDay == nil {
		return false
	}

	ran, err := s.markers.HasRunOn(schedule.ID, today)
	if err != nil {
		s.logger.Error("cannot check execution marker", "schedule", schedule.ID, "error", err)
		return false
	}
	if ran {
		return false
	}

	if s.failures[schedule.ID] >= s.cfg.Scheduler.MaxRetriesPerDay {
		return false
	}

	parsed, err := time.Parse("15:04", *timeOfDay)
	if err != nil {
		s.logger.Warn("unparsable schedule time", "schedule", schedule.ID, "time", *timeOfDay)
		return false
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	return !now.Before(target)
}

// dispatch runs the pipeline for one due schedule and writes the execution
// marker only on success, so failures retry on the next poll.
func (s *Scheduler) dispatch(ctx context.Context, schedule *domain.Schedule, today string) {
	user, err := s.store.GetUserByID(schedule.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// dangling schedule: no owner to notify, no marker to write
			s.logger.Warn("schedule has no owner", "schedule", schedule.ID, "user", schedule.UserID)
			return
		}
		s.logger.Error("cannot resolve schedule owner", "schedule", schedule.ID, "error", err)
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.Scheduler.PipelineTimeout)*time.Second)
	err = s.pipeline.NotifyUser(notifyCtx, user)
	cancel()
	if err != nil {
		s.failures[schedule.ID]++
		s.logger.Error("pipeline run failed",
			"schedule", schedule.ID, "user", user.Email, "attempt", s.failures[schedule.ID], "error", err)
		s.report(ctx, fmt.Sprintf("pipeline run failed for schedule %q", schedule.Name),
			fmt.Sprintf("schedule %d (user %s, attempt %d/%d): %v",
				schedule.ID, user.Email, s.failures[schedule.ID], s.cfg.Scheduler.MaxRetriesPerDay, err))
		return
	}

	if err := s.markers.MarkRun(schedule.ID, today); err != nil {
		// the run itself succeeded; without a marker it will fire again next
		// poll, so the operator needs to know
		s.logger.Error("cannot write execution marker", "schedule", schedule.ID, "error", err)
		s.report(ctx, fmt.Sprintf("marker write failed for schedule %q", schedule.Name),
			fmt.Sprintf("schedule %d ran for %s on %s but the marker write failed: %v",
				schedule.ID, user.Email, today, err))
		return
	}

	delete(s.failures, schedule.ID)
	s.logger.Info("schedule completed", "schedule", schedule.ID, "user", user.Email, "date", today)
}

func (s *Scheduler) report(ctx context.Context, subject, detail string) {
	if err := s.reporter.Report(ctx, subject, detail); err != nil {
		s.logger.Error("cannot deliver failure report", "subject", subject, "error", err)
	}
}
