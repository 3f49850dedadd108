package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"medrecords/internal/amqp"
	"medrecords/internal/attach"
	"medrecords/internal/config"
	apphttp "medrecords/internal/http"
	"medrecords/internal/log"
	"medrecords/internal/services"
	"medrecords/internal/storage"
	"medrecords/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var adapter storage.Adapter
	switch cfg.DataBackend {
	case "sqlite":
		sqliteAdapter, err := storage.NewSQLiteAdapter(cfg.SQLiteDBPath, logger)
		if err != nil {
			logger.Error("Failed to initialize SQLite backend",
				log.FieldError, err.Error(),
				log.FieldBackend, cfg.DataBackend)
			os.Exit(1)
		}
		defer sqliteAdapter.Close()
		adapter = sqliteAdapter
	default:
		adapter = storage.NewMemoryAdapter()
	}
	logger.Info("Initialized data backend", log.FieldBackend, cfg.DataBackend)

	recordStore := store.New(ctx, adapter, logger)

	// The record-event feed is optional; without a broker URL mutations are
	// simply not announced.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		publisher = client
		logger.Info("Record-event feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Record-event feed disabled - no AMQP_URL provided")
	}

	recordService := services.NewRecordService(recordStore, publisher, logger)
	defer recordService.Close()

	encoder := attach.NewEncoder(cfg.AttachmentMaxBytes, logger)

	srv := apphttp.NewServer(":"+cfg.Port, recordService, encoder,
		apphttp.Credentials{
			User:  cfg.AdminUser,
			Pass:  cfg.AdminPass,
			Token: cfg.AdminToken,
		},
		cfg.FrontendOrigin, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting medrecords server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
