package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/assessments"
	"github.com/KDigitalAi/Assessments/internal/config"
	"github.com/KDigitalAi/Assessments/internal/content"
	"github.com/KDigitalAi/Assessments/internal/generator"
	"github.com/KDigitalAi/Assessments/internal/runlock"
)

// PolicyFromConfig maps pipeline settings onto the acceptance policy.
func PolicyFromConfig(p config.PipelineConfig) AcceptancePolicy {
	return AcceptancePolicy{
		Target:      p.QuestionsPerSource,
		MaxAttempts: p.MaxAttempts,
		HardFloor:   p.HardFloor,
		Backoff:     p.RetryDelay,
	}
}

// NewFromConfig assembles a Runner over db. The returned close func
// releases the Redis client when one was dialled.
func NewFromConfig(ctx context.Context, cfg *config.Config, db *sql.DB) (*Runner, func(), error) {
	llm, err := generator.NewCompletionClient(cfg.Completion)
	if err != nil {
		return nil, nil, fmt.Errorf("completion client: %w", err)
	}

	p := cfg.Pipeline
	extractor := generator.NewExtractor(llm, generator.ExtractorConfig{
		MaxContentChars: p.MaxContentChars,
		Temperature:     p.ExtractionTemperature,
		MaxTokens:       p.ExtractionMaxTokens,
	})
	synth := generator.NewSynthesizer(llm, generator.SynthesizerConfig{
		MaxContentChars: p.MaxContentChars,
		Temperature:     p.GenerationTemperature,
		MaxTokens:       p.GenerationMaxTokens,
	})

	var locker runlock.Locker = &runlock.Local{}
	closeFn := func() {}
	if cfg.Redis.URL != "" {
		client, err := runlock.Dial(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		locker = runlock.NewRedisLocker(client, runlock.DefaultKey, cfg.Redis.LockTTL)
		closeFn = func() { client.Close() }
		log.Info().Dur("ttl", cfg.Redis.LockTTL).Msg("Run lock: Redis")
	}

	runner := NewRunner(
		content.NewStore(db),
		extractor,
		NewController(synth, PolicyFromConfig(p)),
		assessments.NewPersister(assessments.NewSQLStore(db, cfg.Database.Driver), p.InsertBatchSize),
		locker,
		p,
	)
	return runner, closeFn, nil
}
