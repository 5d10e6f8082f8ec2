package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/config"
	"github.com/KDigitalAi/Assessments/internal/database"
	"github.com/KDigitalAi/Assessments/internal/logging"
	"github.com/KDigitalAi/Assessments/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file (overrides CONFIG_FILE)")
	sources := flag.String("source", "", "comma-separated source ids to process (default: all)")
	dryRun := flag.Bool("dry-run", false, "generate and validate without writing to the database")
	flag.Parse()

	// Logs go to stderr so stdout carries only the run summary.
	logging.Configure(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	summary, err := runner.Run(ctx, pipeline.RunOptions{
		SourceIDs: splitIDs(*sources),
		DryRun:    *dryRun,
	})
	if summary != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(summary)
	}
	if err != nil {
		log.Error().Err(err).Msg("Generation run aborted")
		closeRunner()
		db.Close()
		os.Exit(1)
	}
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
