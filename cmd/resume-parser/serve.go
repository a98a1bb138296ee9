package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/resumeflow/resumeflow-backend/internal/resume/events"
	"github.com/resumeflow/resumeflow-backend/internal/resume/handler"
	"github.com/resumeflow/resumeflow-backend/internal/resume/repository"
	"github.com/resumeflow/resumeflow-backend/internal/resume/service"
	"github.com/resumeflow/resumeflow-backend/internal/resume/storage"
	"github.com/resumeflow/resumeflow-backend/pkg/config"
	"github.com/resumeflow/resumeflow-backend/pkg/database"
	"github.com/resumeflow/resumeflow-backend/pkg/httputil"
	"github.com/resumeflow/resumeflow-backend/pkg/logger"
	"github.com/resumeflow/resumeflow-backend/pkg/messaging"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the resume parsing HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Str("version", Version).Msg("starting Resume Parser")

	controller, err := newController(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize gemini client")
		return err
	}

	// Job store (in-memory, TTL cleanup)
	store := storage.NewJobStore(cfg.Upload.JobTTL)
	defer store.Close()

	opts := []service.Option{
		service.WithJobTimeout(cfg.Gemini.Timeout*2 + cfg.OCR.Timeout),
	}

	// Audit log (optional)
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to database")
			return err
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return err
		}
		opts = append(opts, service.WithAudit(repository.NewAuditRepository(db)))
	}

	// Event publishing (optional)
	var rmq *messaging.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to RabbitMQ")
			return err
		}
		defer rmq.Close()

		publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeResumeEvents, serviceName, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to create event publisher")
			return err
		}
		opts = append(opts, service.WithEvents(events.NewPublisher(publisher, log)))
	}

	// Initialize service and handlers
	resumeService := service.NewService(controller, store, log, opts...)
	resumeHandler := handler.NewHandler(resumeService, handler.NewAuthenticator(cfg.Auth), cfg.Upload.MaxSize, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", handler.WarningsHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":  "healthy",
			"service": serviceName,
			"version": Version,
		}
		if db != nil {
			health["database"] = db.Health(r.Context())
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	resumeHandler.RegisterRoutes(r)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
		return err
	}

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Let running parse jobs finish their audit and events
	if err := resumeService.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("parse jobs still running at shutdown")
	}

	log.Info().Msg("server stopped")
	return nil
}
