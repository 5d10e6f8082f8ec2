package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KDigitalAi/Assessments/internal/assessments"
	"github.com/KDigitalAi/Assessments/internal/classify"
	"github.com/KDigitalAi/Assessments/internal/config"
	"github.com/KDigitalAi/Assessments/internal/content"
	"github.com/KDigitalAi/Assessments/internal/generator"
	"github.com/KDigitalAi/Assessments/internal/models"
	"github.com/KDigitalAi/Assessments/internal/runlock"
)

// KnowledgeExtractor is satisfied by *generator.Extractor.
type KnowledgeExtractor interface {
	Extract(ctx context.Context, chunks []models.ContentChunk) (models.KnowledgeSummary, error)
}

type RunOptions struct {
	// SourceIDs restricts the run; empty means every catalog source.
	SourceIDs []string
	// DryRun generates and validates but writes nothing.
	DryRun bool
}

type Runner struct {
	catalog    content.Catalog
	extractor  KnowledgeExtractor
	controller *Controller
	persister  *assessments.Persister
	locker     runlock.Locker
	cfg        config.PipelineConfig
}

func NewRunner(catalog content.Catalog, extractor KnowledgeExtractor, controller *Controller,
	persister *assessments.Persister, locker runlock.Locker, cfg config.PipelineConfig) *Runner {
	if locker == nil {
		locker = runlock.Nop{}
	}
	return &Runner{
		catalog:    catalog,
		extractor:  extractor,
		controller: controller,
		persister:  persister,
		locker:     locker,
		cfg:        cfg,
	}
}

// Run processes sources sequentially. A failing source is recorded in the
// summary and the run moves on. Errors are returned only when the run cannot
// start (lock, index, catalog) or ctx ends; the partial summary comes back
// with a context error.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*models.RunSummary, error) {
	release, err := r.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	idx, err := r.persister.LoadIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assessment index: %w", err)
	}
	rc := NewRunContext(idx, opts.DryRun)

	sources, err := r.sources(ctx, opts.SourceIDs)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	rc.Summary.Discovered = len(sources)
	rc.Log.Info().Int("sources", len(sources)).Int("indexed_assessments", idx.Len()).
		Bool("dry_run", opts.DryRun).Msg("Generation run started")

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			rc.Summary.FinishedAt = time.Now().UTC()
			return rc.Summary, err
		}

		existing, err := r.persister.Inspect(ctx, rc.Index, src.ID)
		if err != nil {
			rc.Summary.Record(failed(src, "inspect existing assessment: "+err.Error()))
			continue
		}
		if existing.Complete() {
			rc.Summary.Skipped++
			rc.Log.Debug().Str("source_id", src.ID).Int("questions", existing.QuestionCount).
				Msg("Source already has an assessment, skipping")
			continue
		}

		result := r.processSource(ctx, rc, src, existing)
		rc.Summary.Record(result)

		ev := rc.Log.Info()
		if result.Outcome == models.OutcomeFailed {
			ev = rc.Log.Warn().Str("reason", result.Reason)
		}
		ev.Str("source_id", src.ID).Str("outcome", string(result.Outcome)).
			Int("questions", result.QuestionsInserted).Int("attempts", result.Attempts).
			Msg("Source processed")
	}

	rc.Summary.FinishedAt = time.Now().UTC()
	rc.Log.Info().
		Int("discovered", rc.Summary.Discovered).
		Int("skipped", rc.Summary.Skipped).
		Int("attempted", rc.Summary.Attempted).
		Int("succeeded", rc.Summary.Succeeded).
		Int("failed", rc.Summary.Failed).
		Dur("elapsed", rc.Summary.FinishedAt.Sub(rc.Summary.StartedAt)).
		Msg("Generation run finished")
	return rc.Summary, nil
}

// Trigger runs the pipeline for an API request.
func (r *Runner) Trigger(ctx context.Context, req models.GenerateRequest) (*models.RunSummary, error) {
	return r.Run(ctx, RunOptions{SourceIDs: req.SourceIDs, DryRun: req.DryRun})
}

// sources lists the catalog, narrowed to ids when given. Requested ids the
// catalog does not list are still attempted so they show up as failures.
func (r *Runner) sources(ctx context.Context, ids []string) ([]models.Source, error) {
	all, err := r.catalog.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return all, nil
	}

	byID := make(map[string]models.Source, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}
	out := make([]models.Source, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			out = append(out, s)
			continue
		}
		title, err := r.catalog.GetSourceTitle(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Source{ID: id, DisplayName: title, Kind: models.SourceDocument})
	}
	return out, nil
}

func failed(src models.Source, reason string) models.SourceResult {
	return models.SourceResult{
		SourceID:    src.ID,
		DisplayName: src.DisplayName,
		Outcome:     models.OutcomeFailed,
		Reason:      reason,
	}
}

func (r *Runner) processSource(ctx context.Context, rc *RunContext, src models.Source, existing assessments.Existing) models.SourceResult {
	logger := rc.Log.With().Str("source_id", src.ID).Logger()

	chunks, err := r.catalog.GetChunks(ctx, src.ID, r.cfg.MaxChunks)
	if err != nil {
		return failed(src, "fetch chunks: "+err.Error())
	}
	if len(chunks) == 0 {
		return failed(src, "no chunks found")
	}

	policy := r.controller.Policy()
	difficulty := classify.Difficulty(chunks)
	course := classify.Course(src.Title, src.ID)
	logger.Debug().Int("chunks", len(chunks)).Str("difficulty", string(difficulty)).
		Str("course", course).Msg("Source classified")

	result := models.SourceResult{SourceID: src.ID, DisplayName: src.DisplayName}

	var assessment models.Assessment
	if !rc.DryRun {
		assessment, err = r.persister.EnsureAssessment(ctx, rc.Index, assessments.AssessmentSpec{
			Source:     src,
			CourseName: course,
			Difficulty: difficulty,
			Target:     policy.Target,
			Mix:        generator.SplitDifficulty(policy.Target),
		})
		if err != nil {
			return failed(src, "ensure assessment: "+err.Error())
		}
		result.AssessmentID = assessment.ID
	}

	if existing.QuestionCount > 0 {
		result.Outcome = models.OutcomeBackfilled
		return result
	}

	knowledge, err := r.extractor.Extract(ctx, chunks)
	if err != nil {
		logger.Warn().Err(err).Msg("Knowledge extraction failed, continuing without summary")
	}

	outcome, err := r.controller.Run(ctx, generator.GenerationRequest{
		SourceID:  src.ID,
		Topic:     course,
		Level:     difficulty,
		Target:    policy.Target,
		Technical: classify.IsTechnical(chunks),
		Chunks:    chunks,
		Knowledge: knowledge,
	})
	result.Attempts = outcome.Attempts
	if err != nil {
		return r.fail(ctx, rc, assessment, result, "generation interrupted: "+err.Error())
	}
	if !outcome.Accepted() {
		return r.fail(ctx, rc, assessment, result, outcome.Reason(policy.Target))
	}
	result.Partial = outcome.Partial

	if rc.DryRun {
		result.Outcome = models.OutcomeSucceeded
		return result
	}

	inserted, err := r.persister.SaveQuestions(ctx, assessment, src, outcome.Questions)
	if errors.Is(err, assessments.ErrAlreadyPopulated) {
		logger.Warn().Str("assessment_id", assessment.ID).Msg("Questions appeared during generation, keeping existing set")
		result.Outcome = models.OutcomeBackfilled
		return result
	}
	result.QuestionsInserted = inserted
	if err != nil && inserted == 0 {
		return r.fail(ctx, rc, assessment, result, "store questions: "+err.Error())
	}
	if err != nil {
		logger.Warn().Err(err).Str("assessment_id", assessment.ID).Msg("Questions stored but assessment not finalized")
	}

	result.Outcome = models.OutcomeSucceeded
	return result
}

// fail records a source failure and flags its empty assessment so it is not
// mistaken for a finished one.
func (r *Runner) fail(ctx context.Context, rc *RunContext, a models.Assessment, result models.SourceResult, reason string) models.SourceResult {
	result.Outcome = models.OutcomeFailed
	result.Reason = reason
	if rc.DryRun || a.ID == "" {
		return result
	}
	// ctx may already be cancelled; the flag still needs writing.
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.persister.MarkFailed(markCtx, a); err != nil {
		rc.Log.Error().Err(err).Str("assessment_id", a.ID).Msg("Failed to flag assessment")
	}
	return result
}
