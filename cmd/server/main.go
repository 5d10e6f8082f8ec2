package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/assessments"
	"github.com/KDigitalAi/Assessments/internal/auth"
	"github.com/KDigitalAi/Assessments/internal/config"
	"github.com/KDigitalAi/Assessments/internal/database"
	"github.com/KDigitalAi/Assessments/internal/logging"
	"github.com/KDigitalAi/Assessments/internal/middleware"
	"github.com/KDigitalAi/Assessments/internal/pipeline"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logging.Setup("info", "console")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.ServerReady(); err != nil {
		log.Fatal().Err(err).Msg("Server configuration incomplete")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := database.Migrate(cfg.Database.Driver, cfg.Database.URL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	db, err := database.Connect(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	runner, closeRunner, err := pipeline.NewFromConfig(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up pipeline")
	}
	defer closeRunner()

	// Initialize handlers
	tokens := auth.NewTokens(cfg.Server.JWTSecret, auth.DefaultTTL)
	authHandler := auth.NewHandler(tokens, cfg.Server.AdminPasswordHash)
	assessmentHandler := assessments.NewHandler(assessments.NewSQLStore(db, cfg.Database.Driver), runner)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/token", authHandler.IssueToken).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(tokens))
	protected.HandleFunc("/assessments/generate", assessmentHandler.Generate).Methods("POST")
	protected.HandleFunc("/assessments", assessmentHandler.List).Methods("GET")
	protected.HandleFunc("/assessments/stats", assessmentHandler.Stats).Methods("GET")
	protected.HandleFunc("/assessments/{id}", assessmentHandler.Get).Methods("GET")
	protected.HandleFunc("/assessments/{id}/score", assessmentHandler.Score).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", cfg.Server.Port).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
