package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pingup/backend/internal/models"
	"pingup/backend/pkg/config"
	"pingup/backend/pkg/di"
	"pingup/backend/pkg/grpchealth"
	"pingup/backend/pkg/logger"
	"pingup/backend/pkg/router"
	"pingup/backend/shared/observability"
)

func main() {
	cfg := config.New()

	log := logger.New(logger.FromSettings(cfg.Logging.Level, cfg.Logging.Format))
	logger.SetGlobal(log)

	log.Info("Starting application", "version", os.Getenv("APP_VERSION"), "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := observability.Setup(observability.Options{
		ServiceName: cfg.Observability.ServiceName,
		Tracing:     cfg.Observability.TracingEnabled,
		Metrics:     cfg.Observability.MetricsEnabled,
	})
	if err != nil {
		log.LogError(err, "Failed to initialize telemetry")
		os.Exit(1)
	}

	// Secrets may carry the database password, so load them first
	mgr, err := di.LoadSecrets(ctx, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to load secrets")
		os.Exit(1)
	}

	db, err := config.NewDB(ctx, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	container, err := di.New(ctx, cfg, log, db, mgr)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	go container.Hub.Run(ctx)
	container.Health.Start(ctx, 30*time.Second)

	r := router.New(container, tel)
	r.AddOpenAPIValidation(cfg.Security.OpenAPISchemaPath)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r.Engine,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	var grpcServer *grpchealth.Server
	if cfg.GRPC.Port != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
		if err != nil {
			log.LogError(err, "Failed to listen for gRPC health", "port", cfg.GRPC.Port)
			os.Exit(1)
		}
		grpcServer = grpchealth.New(container.Health, log)
		go func() {
			log.Info("gRPC health server starting", "port", cfg.GRPC.Port)
			if err := grpcServer.Serve(lis); err != nil {
				log.LogError(err, "gRPC health server stopped")
			}
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}
	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Failed to flush telemetry")
	}
	r.Close()
	container.Close()

	log.Info("Server exited gracefully")
}
