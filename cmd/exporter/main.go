package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-status-exporter/internal/api/http"
	"github.com/spec-kit/ticket-status-exporter/internal/api/http/handlers"
	"github.com/spec-kit/ticket-status-exporter/internal/client"
	"github.com/spec-kit/ticket-status-exporter/internal/config"
	"github.com/spec-kit/ticket-status-exporter/internal/events"
	"github.com/spec-kit/ticket-status-exporter/internal/export"
	"github.com/spec-kit/ticket-status-exporter/internal/observability"
	"github.com/spec-kit/ticket-status-exporter/internal/persistence"
	"github.com/spec-kit/ticket-status-exporter/internal/repository"
	"github.com/spec-kit/ticket-status-exporter/internal/service"
	"github.com/spec-kit/ticket-status-exporter/internal/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	config.BindFlags(pflag.CommandLine, cfg)
	pflag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var sinks []service.SnapshotSink
	if pg.Enabled() {
		sinks = append(sinks, service.NewPostgresSink(repository.NewSnapshotRepository(pg.PoolHandle())))
	}
	if redis.Enabled() {
		sinks = append(sinks, service.NewRedisSink(repository.NewStatusCacheRepository(redis.Client, cfg.Redis.TTL())))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger, metrics, cfg.Notification)

	exportService := service.NewExportService(service.ExportDependencies{
		InputPath:    cfg.Files.InputPath,
		IDColumn:     cfg.Files.IDColumn,
		RequestDelay: cfg.API.RequestDelay(),
		Fetcher:      client.NewTicketClient(cfg.API.Endpoint, cfg.API.Key, cfg.API.RequestTimeout(), logger),
		Exporter:     export.NewCSVExporter(cfg.Files.AllTicketsPath, cfg.Files.StatusCountsPath, logger),
		Outputs:      []string{cfg.Files.AllTicketsPath, cfg.Files.StatusCountsPath},
		Sinks:        sinks,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	logger.Info("starting export",
		zap.String("run_id", exportService.RunID()),
		zap.String("input", cfg.Files.InputPath),
		zap.String("version", cfg.App.Version))

	if cfg.Status.Enabled() {
		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		httptransport.RegisterMiddlewares(app, logger, metrics)
		httptransport.RegisterRoutes(app, httptransport.RouteConfig{
			Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
			Progress: handlers.NewProgressHandler(exportService, metrics),
		})

		go func() {
			if err := app.Listen(cfg.Status.Addr()); err != nil {
				logger.Error("progress server stopped", zap.Error(err))
			}
		}()
		defer app.Shutdown() //nolint:errcheck
	}

	reporter := worker.StartProgressReporter(ctx, exportService, cfg.App.ProgressInterval(), logger)

	snap, err := exportService.Run(ctx)
	stop()
	<-reporter
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("export interrupted")
		} else {
			logger.Error("export failed", zap.Error(err))
		}
		return 1
	}

	logger.Info("export finished",
		zap.Int("requested", snap.Requested),
		zap.Int("fetched", snap.Fetched()),
		zap.Int("failed", snap.Failed),
		zap.Duration("elapsed", snap.FinishedAt.Sub(snap.StartedAt)))
	return 0
}
