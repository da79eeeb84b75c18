package repository

import (
	"context"
	"time"
)

// The job_runs table is the append-only execution marker log. One row per
// (schedule, calendar date) proves that the schedule already fired that day;
// rows are never updated or deleted here.

func (r *Repository) HasRunOn(scheduleID int64, runDate string) (bool, error) {
	exists := false

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM job_runs WHERE schedule_id = $1 AND run_date = $2)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, scheduleID, runDate).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) MarkRun(scheduleID int64, runDate string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	// the unique index on (schedule_id, run_date) makes concurrent marker
	// writes for the same day collapse into one row
	query := `
		INSERT INTO job_runs (schedule_id, run_date)
		VALUES ($1, $2)
		ON CONFLICT (schedule_id, run_date) DO NOTHING
	`

	_, err := r.dbpool.ExecContext(ctx, query, scheduleID, runDate)
	if err != nil {
		return err
	}

	return nil
}
