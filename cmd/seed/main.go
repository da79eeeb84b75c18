package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/repository"
	"github.com/bidwatch-dev/bidwatch/backend/internal/seed"

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

	if cfg.Environment == "production" {
		logger.Error("refusing to seed a production database")
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("cannot connect to database", "error", err)
		return
	}

	/**********************************************
	 * create schema and seed
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	if err := repo.Setup(); err != nil {
		logger.Error("cannot set up database schema", "error", err)
		return
	}

	seed.Seed(cfg, repo)
	logger.Info("seeding finished")
}
