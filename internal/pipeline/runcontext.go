package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/assessments"
	"github.com/KDigitalAi/Assessments/internal/models"
)

// RunContext is the state of one pipeline run. It is built fresh at run
// start and dropped at the end, so nothing leaks between runs.
type RunContext struct {
	RunID   string
	DryRun  bool
	Index   *assessments.Index
	Summary *models.RunSummary
	Log     zerolog.Logger
}

func NewRunContext(idx *assessments.Index, dryRun bool) *RunContext {
	runID := uuid.NewString()
	return &RunContext{
		RunID:  runID,
		DryRun: dryRun,
		Index:  idx,
		Summary: &models.RunSummary{
			RunID:     runID,
			StartedAt: time.Now().UTC(),
			DryRun:    dryRun,
			Results:   []models.SourceResult{},
		},
		Log: log.With().Str("run_id", runID).Logger(),
	}
}
