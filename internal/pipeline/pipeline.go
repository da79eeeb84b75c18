// Package pipeline is the retrieval-and-notification callback the scheduler
// drives: refresh the record store, filter the snapshot through the user's
// criteria, and hand the result to the mail queue.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/criteria"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
	"github.com/bidwatch-dev/bidwatch/backend/internal/records"
)

// FilterStore supplies the user's saved filters.
type FilterStore interface {
	GetFiltersByUser(userID int64) ([]*domain.Filter, error)
}

// MailPublisher is the slice of *amqp.Channel the pipeline needs.
type MailPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Pipeline struct {
	cfg       *config.Config
	filters   FilterStore
	store     *records.Store
	evaluator *criteria.Evaluator
	publisher MailPublisher
	logger    *slog.Logger

	now func() time.Time
}

func New(cfg *config.Config, filters FilterStore, store *records.Store, evaluator *criteria.Evaluator, publisher MailPublisher) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		filters:   filters,
		store:     store,
		evaluator: evaluator,
		publisher: publisher,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// RefreshRecords replaces the record store snapshot from all upstream
// sources. Safe to call repeatedly; also used by the manual refresh API.
func (p *Pipeline) RefreshRecords(ctx context.Context) error {
	return p.store.Refresh(ctx)
}

// NotifyUser mails the user the solicitations that match any of their
// filters. A user without filters receives the full snapshot.
func (p *Pipeline) NotifyUser(ctx context.Context, user *domain.User) error {
	filters, err := p.filters.GetFiltersByUser(user.ID)
	if err != nil {
		return fmt.Errorf("load filters for %s: %w", user.Email, err)
	}

	matched, err := p.Filter(p.store.ListAll(), filters)
	if err != nil {
		return fmt.Errorf("apply filters for %s: %w", user.Email, err)
	}

	p.logger.Info("sending summary", "user", user.Email, "filters", len(filters), "matched", len(matched))

	message := domain.MailMessage{
		Type: "summary",
		To:   user.Email,
		Data: domain.SummaryMailData{
			Date:          p.now().Format("2006-01-02"),
			Solicitations: matched,
		},
	}

	return p.publish(ctx, message)
}

// Filter keeps the solicitations matching at least one filter. Zero filters
// means no filtering at all. A malformed criteria tree fails the whole run
// so the owner's filters get fixed instead of silently dropped.
func (p *Pipeline) Filter(solicitations []domain.Solicitation, filters []*domain.Filter) ([]domain.Solicitation, error) {
	if len(filters) == 0 {
		return solicitations, nil
	}

	matched := make([]domain.Solicitation, 0)
	for _, solicitation := range solicitations {
		for _, filter := range filters {
			ok, err := p.evaluator.Evaluate(filter.Criteria, solicitation)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", filter.Name, err)
			}
			if ok {
				matched = append(matched, solicitation)
				break
			}
		}
	}

	return matched, nil
}

func (p *Pipeline) publish(ctx context.Context, message domain.MailMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return p.publisher.PublishWithContext(
		publishCtx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
