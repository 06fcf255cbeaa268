package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"weekspend/internal/amqp"
	"weekspend/internal/cache"
	"weekspend/internal/cli"
	"weekspend/internal/core"
	apphttp "weekspend/internal/http"
	"weekspend/internal/log"
	"weekspend/internal/services"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext()
	defer stop()

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend close failed", log.FieldError, err)
		}
	}()

	agg, err := cli.NewAggregator(cfg, nil)
	if err != nil {
		logger.Error("Invalid report settings", log.FieldError, err)
		os.Exit(1)
	}

	expenseCache := cache.NewLRUCache[[]core.Expense](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(expenseCache)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	reports := services.NewReportService(res.Backend, agg, expenseCache, logger.WithComponent(log.ComponentReport).Logger)

	// A nil interface keeps publishing disabled; never pass a typed nil client.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}
	expenses := services.NewExpenseService(res.Backend, publisher)
	expenses.OnCreated(func(e core.Expense) {
		logger.Debug("Expense recorded", log.FieldExpenseID, e.ID, log.FieldExpenseDate, e.Date)
	})

	srv := apphttp.NewServer(":"+cfg.Port, reports, expenses, apphttp.Options{
		Logger: logger.WithComponent(log.ComponentHTTP),
		Ready:  res.Ping,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting weekspend server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			log.FieldLocale, cfg.WeekLocale,
			"timezone", agg.Location().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
