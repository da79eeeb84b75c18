package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/criteria"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
	"github.com/bidwatch-dev/bidwatch/backend/internal/handler"
	"github.com/bidwatch-dev/bidwatch/backend/internal/pipeline"
	"github.com/bidwatch-dev/bidwatch/backend/internal/records"
	"github.com/bidwatch-dev/bidwatch/backend/internal/repository"
	"github.com/bidwatch-dev/bidwatch/backend/internal/scheduler"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * create logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * load configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("cannot load configuration", "error", err)
		return
	}

	/**********************************************
	 * connect to the database
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("cannot create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not touch the network, ping to fail fast
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("cannot connect to database", "error", err)
		return
	}

	/**********************************************
	 * create repository and schema
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	if err := repo.Setup(); err != nil {
		logger.Error("cannot set up database schema", "error", err)
		return
	}

	/**********************************************
	 * ensure the initial admin exists
	 **********************************************/
	if _, err := repo.EnsureUser(cfg.InitialAdmin.Email, true); err != nil {
		logger.Error("cannot create initial admin", "error", err)
		return
	}

	/**********************************************
	 * connect to rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("cannot connect to rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("cannot open channel", "error", err)
		return
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("cannot declare queue", "error", err)
		return
	}

	/**********************************************
	 * connect to redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	/**********************************************
	 * assemble the record store and pipeline
	 **********************************************/
	store := records.NewStore(records.NewEVPSource(cfg))
	evaluator := criteria.NewEvaluator(domain.DateFields, nil)
	p := pipeline.New(cfg, repo, store, evaluator, ch)
	reporter := pipeline.NewReporter(cfg, ch)

	/**********************************************
	 * start the scheduler loop
	 **********************************************/
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.New(cfg, repo, repo, p, reporter).Run(schedulerCtx)
	}()

	/**********************************************
	 * create handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, ch, rdb, store, evaluator, p)
	if err != nil {
		logger.Error("cannot create handler", "error", err)
		stopScheduler()
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * start the HTTP server
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("cannot start server", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("shutting down...")

	stopScheduler()
	wg.Wait()

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
