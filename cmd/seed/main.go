package main

import (
	"context"
	_ "embed"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

//go:embed catalog.yaml
var defaultCatalog []byte

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	file := flag.String("file", "", "catalog yaml to load instead of the built-in demo catalog")
	flag.Parse()

	cfg := pkgconfig.Load()
	logger := logging.New(cfg.LogLevel).With("service", "seed")
	slog.SetDefault(logger)

	if err := pkgconfig.Require(map[string]string{"DATABASE_URL": cfg.DatabaseURL}); err != nil {
		logger.Error("config_error", "error", err)
		os.Exit(1)
	}

	raw := defaultCatalog
	if *file != "" {
		b, err := os.ReadFile(*file)
		if err != nil {
			logger.Error("read_catalog_error", "file", *file, "error", err)
			os.Exit(1)
		}
		raw = b
	}
	c, err := parseCatalog(raw)
	if err != nil {
		logger.Error("parse_catalog_error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db_open_error", "error", err)
		os.Exit(1)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.AutoMigrate(models.All()...); err != nil {
		logger.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	var index service.ProductIndex
	es, err := search.New(ctx, search.Config{
		URL:      cfg.ESURL,
		Username: cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	}, logger)
	if err != nil {
		logger.Warn("search_unavailable", "error", err)
	} else if es != nil {
		if err := es.EnsureIndex(ctx); err != nil {
			logger.Warn("search_index_error", "error", err)
		}
		index = es
	}

	if err := apply(ctx, repo.New(db), index, c, logger); err != nil {
		logger.Error("seed_error", "error", err)
		os.Exit(1)
	}
}
