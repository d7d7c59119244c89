package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vyaparbooks/ledger_core_app/internal/core/services"
	"github.com/vyaparbooks/ledger_core_app/internal/jobs"
	"github.com/vyaparbooks/ledger_core_app/internal/platform/config"
	"github.com/vyaparbooks/ledger_core_app/internal/repositories/database/pgsql"
	"github.com/vyaparbooks/ledger_core_app/pkg/database"
)

// The worker processes queued jobs and runs the scheduled posting batch.
// It shares the service layer with the HTTP backend, so a voucher posted
// here goes through the same invariants as one posted over the API.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, repos)

	postingRunTask, err := jobs.NewPostingRunTask(jobs.PostingRunPayload{})
	if err != nil {
		logger.Error("Failed to build posting run task", slog.String("error", err.Error()))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		},
		Logger: logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypePostingRun, Handler: jobs.NewPostingRunHandler(serviceContainer.PostingRun, logger)},
			{Type: jobs.TaskTypeAutoMatch, Handler: jobs.NewAutoMatchHandler(serviceContainer.Recon, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.PostingRunSchedule, Task: postingRunTask},
		},
	})
	if err != nil {
		logger.Error("Failed to initialize worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Worker starting",
		slog.String("redis_addr", cfg.RedisAddr),
		slog.String("posting_run_schedule", cfg.PostingRunSchedule))

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Worker shut down")
}
