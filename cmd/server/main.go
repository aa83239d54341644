package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/studyloft/studyloft/config"
	"github.com/studyloft/studyloft/database"
	"github.com/studyloft/studyloft/events"
	"github.com/studyloft/studyloft/extract"
	"github.com/studyloft/studyloft/handler"
	"github.com/studyloft/studyloft/llm"
	"github.com/studyloft/studyloft/pkg/metrics"
	"github.com/studyloft/studyloft/repository"
	"github.com/studyloft/studyloft/router"
	"github.com/studyloft/studyloft/service"
	"github.com/studyloft/studyloft/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	metrics.StartMetricsServer(cfg.Metrics.Port)
	logger.Infof("Prometheus metrics server started on :%s", cfg.Metrics.Port)

	db, err := database.Open(cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("failed to connect database: %v", err)
	}
	logger.Info("database ready")

	store, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		logger.Fatalf("failed to init object storage: %v", err)
	}

	registry := extract.NewRegistry()
	registry.Register("application/pdf", extract.NewPDFExtractor(cfg.Extractor))
	registry.Register("text/plain", extract.NewPlainTextExtractor())
	registry.Register("text/markdown", extract.NewPlainTextExtractor())

	openaiClient := llm.NewOpenAIClient(cfg.OpenAI, logger)
	publisher := events.NewPublisher(cfg.Kafka, logger)
	runner := service.NewRunner(logger)

	sessionRepo := repository.NewSessionRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	deckRepo := repository.NewDeckRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	lectureRepo := repository.NewLectureRepository(db)

	// Mark work orphaned by a previous crash before accepting traffic.
	reconciler := service.NewReconciler(materialRepo, quizRepo, deckRepo, summaryRepo, lectureRepo, logger)
	if swept, err := reconciler.Sweep(); err != nil {
		logger.Fatalf("startup reconciliation failed: %v", err)
	} else if swept > 0 {
		logger.Warnf("marked %d interrupted records as failed", swept)
	}

	materialSvc := service.NewMaterialService(materialRepo, sessionRepo, store, registry, runner, publisher, logger, cfg.MinIO.BucketName)
	quizSvc := service.NewQuizService(quizRepo, materialRepo, openaiClient, runner, publisher, logger)
	deckSvc := service.NewFlashcardService(deckRepo, materialRepo, openaiClient, runner, publisher, logger)
	summarySvc := service.NewSummaryService(summaryRepo, materialRepo, openaiClient, runner, publisher, logger)
	lectureSvc := service.NewLectureService(lectureRepo, materialRepo, openaiClient, openaiClient, store, runner, publisher, logger, cfg.MinIO.AudioBucketName)

	engine := router.Setup(
		handler.NewSessionHandler(sessionRepo, materialSvc, logger),
		handler.NewMaterialHandler(materialSvc, logger),
		handler.NewQuizHandler(quizSvc, logger),
		handler.NewFlashcardHandler(deckSvc, logger),
		handler.NewSummaryHandler(summarySvc, logger),
		handler.NewLectureHandler(lectureSvc, logger),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: engine,
	}

	go func() {
		logger.Infof("HTTP server listening on :%s", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}

	// Let in-flight extraction and generation tasks reach a terminal status.
	runner.Wait()
	if err := publisher.Close(); err != nil {
		logger.Errorf("closing event publisher: %v", err)
	}
	logger.Info("server stopped")
}
