package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"weekspend/internal/amqp"
	"weekspend/internal/cli"
	"weekspend/internal/log"
	"weekspend/internal/storage"
)

const (
	retryDelay    = 5 * time.Second
	statsInterval = 5 * time.Minute
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Starting weekspend-worker", "queue", cfg.AMQPQueue, "db", cfg.SQLiteDBPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consume(gctx, client, repo, logger)
	})
	g.Go(func() error {
		reportStats(gctx, repo, logger)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// consume stores every recorded expense until ctx is done, reconnecting
// after broker failures.
func consume(ctx context.Context, client *amqp.Client, repo *storage.SQLiteRepository, logger *log.Logger) error {
	handle := func(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
		e := msg.Expense()
		if _, err := repo.Append(ctx, e); err != nil {
			return err
		}
		logger.Info("Stored recorded expense",
			log.FieldExpenseID, e.ID,
			log.FieldExpenseDate, e.Date,
			log.FieldAmountCents, e.Amount.Cents)
		return nil
	}

	for {
		err := client.ConsumeExpenseRecorded(ctx, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("Message consumption failed, retrying", log.FieldError, err, "delay", retryDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func reportStats(ctx context.Context, repo *storage.SQLiteRepository, logger *log.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.Count(ctx)
			if err != nil {
				logger.Warn("Count expenses failed", log.FieldError, err)
				continue
			}
			logger.Info("Ledger size", log.FieldCount, n)
		}
	}
}
