package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/akruglov/footsync/external/championat"
	"github.com/akruglov/footsync/external/fetch"
	"github.com/akruglov/footsync/external/fotmob"
	"github.com/akruglov/footsync/external/transfermarkt"
	"github.com/akruglov/footsync/internal/config"
	"github.com/akruglov/footsync/internal/infrastructure/repository/postgres"
	"github.com/akruglov/footsync/internal/platform/logging"
	"github.com/akruglov/footsync/internal/platform/resilience"
	"github.com/akruglov/footsync/internal/usecase"
)

const runTimeout = 45 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.ServiceName, cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	compRepo := postgres.NewCompetitionRepository(db)
	watermarkRepo := postgres.NewWatermarkRepository(db)
	batchRepo := postgres.NewBatchRepository(db, logger)

	matchSource := fotmob.NewClient(newFetchClient("fotmob", cfg.Fotmob, logger), cfg.Fotmob.BaseURL)
	linkSource := transfermarkt.NewClient(newFetchClient("transfermarkt", cfg.Transfermarkt, logger), cfg.Transfermarkt.BaseURL)
	scheduleSource := championat.NewClient(newFetchClient("championat", cfg.Championat, logger), cfg.Championat.BaseURL)

	linker := usecase.NewLinkerService(linkSource, logger)
	metadata := usecase.NewMetadataService(scheduleSource, compRepo, logger)
	ingestion := usecase.NewIngestionService(
		usecase.IngestionConfig{WorkerCount: cfg.WorkerCount},
		matchSource,
		linker,
		compRepo,
		watermarkRepo,
		batchRepo,
		logger,
	)

	runIngestion := func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		reports, err := ingestion.IngestAll(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "ingestion run finished with failures", "error", err)
		}
		for _, report := range reports {
			logger.InfoContext(ctx, "competition run report",
				"competition", report.Competition,
				"matches", report.MatchCount,
				"detail_failures", report.DetailFailures,
				"advanced", report.Advanced,
				"skipped", report.Skipped,
			)
		}
	}
	runMetadata := func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if err := metadata.RefreshAll(ctx); err != nil {
			logger.ErrorContext(ctx, "metadata refresh finished with failures", "error", err)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.IngestCron, runIngestion); err != nil {
		logger.Error("schedule ingestion", "cron", cfg.IngestCron, "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc(cfg.MetadataCron, runMetadata); err != nil {
		logger.Error("schedule metadata refresh", "cron", cfg.MetadataCron, "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("scheduler started",
		"ingest_cron", cfg.IngestCron,
		"metadata_cron", cfg.MetadataCron,
		"workers", cfg.WorkerCount,
	)

	if cfg.RunOnStart {
		go func() {
			runMetadata()
			runIngestion()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	// Stop returns once in-flight jobs finish.
	<-scheduler.Stop().Done()
	logger.Info("scheduler stopped")
}

func newFetchClient(source string, src config.Source, logger *logging.Logger) *fetch.Client {
	return fetch.NewClient(fetch.ClientConfig{
		Source:     source,
		Timeout:    src.Timeout,
		MaxRetries: src.MaxRetries,
		RetryDelay: src.RetryDelay,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          src.CircuitEnabled,
			FailureThreshold: src.CircuitFailureCount,
			OpenTimeout:      src.CircuitOpenTimeout,
			HalfOpenMaxReq:   src.CircuitHalfOpenMaxReq,
		},
	})
}
