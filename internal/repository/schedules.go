package repository

import (
	"context"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

func (r *Repository) CreateSchedule(schedule *domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO schedules (user_id, name, monday, tuesday, wednesday, thursday, friday, saturday, sunday)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	args := []any{
		schedule.UserID,
		schedule.Name,
		schedule.Monday,
		schedule.Tuesday,
		schedule.Wednesday,
		schedule.Thursday,
		schedule.Friday,
		schedule.Saturday,
		schedule.Sunday,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetScheduleByID(id int64) (*domain.Schedule, error) {
	query := `
		SELECT user_id, name, monday, tuesday, wednesday, thursday, friday, saturday, sunday, created_at, version
		FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	schedule := &domain.Schedule{
		ID: id,
	}

	dst := []any{
		&schedule.UserID,
		&schedule.Name,
		&schedule.Monday,
		&schedule.Tuesday,
		&schedule.Wednesday,
		&schedule.Thursday,
		&schedule.Friday,
		&schedule.Saturday,
		&schedule.Sunday,
		&schedule.CreatedAt,
		&schedule.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (r *Repository) GetSchedulesByUser(userID int64) ([]*domain.Schedule, error) {
	query := `
		SELECT id, user_id, name, monday, tuesday, wednesday, thursday, friday, saturday, sunday, created_at, version
		FROM schedules WHERE user_id = $1
		ORDER BY id
	`

	return r.querySchedules(query, userID)
}

func (r *Repository) GetAllSchedules() ([]*domain.Schedule, error) {
	query := `
		SELECT id, user_id, name, monday, tuesday, wednesday, thursday, friday, saturday, sunday, created_at, version
		FROM schedules
		ORDER BY id
	`

	return r.querySchedules(query)
}

func (r *Repository) querySchedules(query string, args ...any) ([]*domain.Schedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)
	for rows.Next() {
		schedule := &domain.Schedule{}
		dst := []any{
			&schedule.ID,
			&schedule.UserID,
			&schedule.Name,
			&schedule.Monday,
			&schedule.Tuesday,
			&schedule.Wednesday,
			&schedule.Thursday,
			&schedule.Friday,
			&schedule.Saturday,
			&schedule.Sunday,
			&schedule.CreatedAt,
			&schedule.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func (r *Repository) UpdateSchedule(schedule *domain.Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE schedules
		SET
			name = $1,
			monday = $2,
			tuesday = $3,
			wednesday = $4,
			thursday = $5,
			friday = $6,
			saturday = $7,
			sunday = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	args := []any{
		schedule.Name,
		schedule.Monday,
		schedule.Tuesday,
		schedule.Wednesday,
		schedule.Thursday,
		schedule.Friday,
		schedule.Saturday,
		schedule.Sunday,
		schedule.ID,
		schedule.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&schedule.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSchedule(id int64) error {
	query := `
		DELETE FROM schedules WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
