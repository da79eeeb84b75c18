package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
)

// Reporter mails operator-facing failure notifications to the configured
// admin address through the same mail queue as everything else.
type Reporter struct {
	cfg       *config.Config
	publisher MailPublisher
	logger    *slog.Logger
}

func NewReporter(cfg *config.Config, publisher MailPublisher) *Reporter {
	return &Reporter{
		cfg:       cfg,
		publisher: publisher,
		logger:    slog.Default(),
	}
}

func (r *Reporter) Report(ctx context.Context, subject, detail string) error {
	r.logger.Warn("reporting failure to operator", "subject", subject)

	message := domain.MailMessage{
		Type: "failure",
		To:   r.cfg.InitialAdmin.Email,
		Data: domain.FailureMailData{
			Subject: subject,
			Detail:  detail,
		},
	}

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return r.publisher.PublishWithContext(
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
