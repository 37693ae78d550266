package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/config"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/monitoring"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/notifications"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/scheduler"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/sentiment"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/sources"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Reddit sentiment alert bot")

	store, err := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseTable)
	if err != nil {
		logrus.Fatalf("Failed to initialize alert store: %v", err)
	}

	source := sources.NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUserAgent)
	if !source.IsEnabled() {
		logrus.Fatal("Reddit credentials are not configured")
	}

	classifier := sentiment.NewClassifier(sentiment.NewVaderScorer(), cfg.SentimentThreshold)
	monitorService := monitoring.NewService(cfg, source, store, classifier)

	notificationService := notifications.NewService(cfg)
	schedulerService := scheduler.NewService(cfg, store, notificationService)

	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Run the monitor loop until shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go monitorService.Run(ctx)

	// HTTP server for health checks, metrics and manual triggers
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(monitorService)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(monitorService)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(monitorService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(monitorService.GetMetrics()))
	}
}

func triggerHandler(monitorService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			if err := monitorService.RunCycle(ctx); err != nil {
				logrus.Errorf("Manual cycle trigger failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Cycle triggered successfully"}`))
	}
}
