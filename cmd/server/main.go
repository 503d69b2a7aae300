package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/ideaforge/backend/docs" // generated swagger docs
	"github.com/ideaforge/backend/internal/api"
	"github.com/ideaforge/backend/internal/books"
	"github.com/ideaforge/backend/internal/generator"
	"github.com/ideaforge/backend/internal/grader"
	"github.com/ideaforge/backend/internal/infrastructure/config"
	"github.com/ideaforge/backend/internal/llm"
	"github.com/ideaforge/backend/internal/scheduler"
	"github.com/ideaforge/backend/internal/service"
	"github.com/ideaforge/backend/internal/store"
)

// @title           IdeaForge API
// @version         1.0
// @description     Adaptive assessment and spaced repetition for ideas from books — add a book, practice its ideas, and let the engine schedule what to review.

// @host      localhost:8080
// @BasePath  /

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// ── Dependencies ────────────────────────────────────────────────
	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Generation wants variety, grading wants determinism.
	genProvider := llm.NewOpenAIProvider(llm.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: 0.7,
	})
	gradeProvider := llm.NewOpenAIProvider(llm.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: 0,
	})

	gen := generator.New(genProvider, logger)
	analyzer := books.NewAnalyzer(genProvider, logger)
	metadata := books.NewMetadataClient("https://openlibrary.org")

	queueSvc := service.NewReviewQueueService(db, logger, time.Duration(cfg.ReviewRetentionDays)*24*time.Hour)
	masterySvc := service.NewMasteryService(db, logger, scheduler.DefaultParams(), time.Duration(cfg.CurveballAfterDays)*24*time.Hour)
	evalSvc := service.NewEvaluationService(db, grader.NewLLMGrader(gradeProvider), logger)
	sessionSvc := service.NewSessionService(db, gen, queueSvc, masterySvc, evalSvc, logger)

	handler := api.NewHandler(db, sessionSvc, queueSvc, masterySvc, analyzer, metadata, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	api.RegisterRoutes(mux, handler)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      120 * time.Second, // session assembly waits on the content provider
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed to start", "error", err)
		os.Exit(1)
	}
}
