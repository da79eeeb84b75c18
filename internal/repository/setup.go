package repository

import (
	"context"
	"time"
)

// Setup creates the schema if it is missing. The service owns its tables
// and provisions them at boot.
func (r *Repository) Setup() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS schedules (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			monday TEXT,
			tuesday TEXT,
			wednesday TEXT,
			thursday TEXT,
			friday TEXT,
			saturday TEXT,
			sunday TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS filters (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			criteria JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS job_runs (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			schedule_id BIGINT NOT NULL,
			run_date TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (schedule_id, run_date)
		)`,
	}

	for _, statement := range statements {
		if _, err := r.dbpool.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}
