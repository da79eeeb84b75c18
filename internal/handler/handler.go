package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/criteria"
	"github.com/bidwatch-dev/bidwatch/backend/internal/pipeline"
	"github.com/bidwatch-dev/bidwatch/backend/internal/records"
	"github.com/bidwatch-dev/bidwatch/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	records     *records.Store
	evaluator   *criteria.Evaluator
	pipeline    *pipeline.Pipeline

	Mux *chi.Mux
}

func NewHandler(
	cfg *config.Config,
	repo *repository.Repository,
	mailCh *amqp.Channel,
	rdb *redis.Client,
	store *records.Store,
	evaluator *criteria.Evaluator,
	p *pipeline.Pipeline,
) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		records:     store,
		evaluator:   evaluator,
		pipeline:    p,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// passwordless login
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/send-link", h.SendMagicLink)
		r.Get("/magic-login", h.MagicLogin)
		r.Post("/logout", h.Logout)
	})

	// everything below requires a valid session
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Get("/my-info", h.GetMyInfo)

		r.Route("/users", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/", h.AddUser)
			r.Get("/", h.GetAllUsers)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Post("/", h.CreateSchedule)
			r.Get("/", h.GetMySchedules)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.schedule)
				r.Get("/", h.GetSchedule)
				r.Patch("/", h.UpdateSchedule)
				r.Delete("/", h.DeleteSchedule)
			})
		})

		r.Route("/filters", func(r chi.Router) {
			r.Post("/", h.CreateFilter)
			r.Get("/", h.GetMyFilters)
			r.Post("/test", h.TestFilter)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.filter)
				r.Get("/", h.GetFilter)
				r.Patch("/", h.UpdateFilter)
				r.Delete("/", h.DeleteFilter)
			})
		})

		r.Route("/solicitations", func(r chi.Router) {
			r.Get("/", h.GetSolicitations)
			r.With(h.requireAdmin).Post("/refresh", h.RefreshSolicitations)
		})
	})
}
