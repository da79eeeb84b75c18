package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/criteria"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

func (r *Repository) CreateFilter(filter *domain.Filter) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	criteriaJSON, err := json.Marshal(filter.Criteria)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO filters (user_id, name, criteria)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	args := []any{filter.UserID, filter.Name, criteriaJSON}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&filter.ID, &filter.CreatedAt, &filter.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetFilterByID(id int64) (*domain.Filter, error) {
	query := `
		SELECT user_id, name, criteria, created_at, version
		FROM filters WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	filter := &domain.Filter{
		ID: id,
	}

	var criteriaJSON []byte
	dst := []any{&filter.UserID, &filter.Name, &criteriaJSON, &filter.CreatedAt, &filter.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(criteriaJSON, &filter.Criteria); err != nil {
		return nil, err
	}

	return filter, nil
}

func (r *Repository) GetFiltersByUser(userID int64) ([]*domain.Filter, error) {
	query := `
		SELECT id, user_id, name, criteria, created_at, version
		FROM filters WHERE user_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	filters := make([]*domain.Filter, 0)
	for rows.Next() {
		filter := &domain.Filter{}
		var criteriaJSON []byte
		dst := []any{&filter.ID, &filter.UserID, &filter.Name, &criteriaJSON, &filter.CreatedAt, &filter.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		filter.Criteria = &criteria.Node{}
		if err := json.Unmarshal(criteriaJSON, filter.Criteria); err != nil {
			return nil, err
		}

		filters = append(filters, filter)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filters, nil
}

func (r *Repository) UpdateFilter(filter *domain.Filter) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	criteriaJSON, err := json.Marshal(filter.Criteria)
	if err != nil {
		return err
	}

	query := `
		UPDATE filters
		SET
			name = $1,
			criteria = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	args := []any{filter.Name, criteriaJSON, filter.ID, filter.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&filter.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteFilter(id int64) error {
	query := `
		DELETE FROM filters WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
