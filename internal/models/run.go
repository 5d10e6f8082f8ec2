package models

import "time"

type SourceOutcome string

const (
	OutcomeSucceeded  SourceOutcome = "succeeded"
	OutcomeBackfilled SourceOutcome = "backfilled"
	OutcomeFailed     SourceOutcome = "failed"
)

type SourceResult struct {
	SourceID          string        `json:"source_id"`
	DisplayName       string        `json:"display_name"`
	Outcome           SourceOutcome `json:"outcome"`
	AssessmentID      string        `json:"assessment_id,omitempty"`
	QuestionsInserted int           `json:"questions_inserted"`
	Attempts          int           `json:"attempts"`
	Partial           bool          `json:"partial,omitempty"`
	Reason            string        `json:"reason,omitempty"`
}

// RunSummary is what a pipeline run reports back to the operator.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run,omitempty"`
	Discovered int            `json:"discovered"`
	Skipped    int            `json:"skipped"`
	Attempted  int            `json:"attempted"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Results    []SourceResult `json:"results"`
}

func (s *RunSummary) Record(r SourceResult) {
	s.Attempted++
	if r.Outcome == OutcomeFailed {
		s.Failed++
	} else {
		s.Succeeded++
	}
	s.Results = append(s.Results, r)
}
