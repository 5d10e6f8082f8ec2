// Package pipeline drives a generation run: one source at a time through
// chunk retrieval, extraction, bounded-retry generation and persistence.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KDigitalAi/Assessments/internal/generator"
	"github.com/KDigitalAi/Assessments/internal/models"
)

type State string

const (
	StateGenerating State = "GENERATING"
	StateValidating State = "VALIDATING"
	StateAccepted   State = "ACCEPTED"
	StateRetry      State = "RETRY"
	StateExhausted  State = "EXHAUSTED"
)

// AcceptancePolicy decides when a generation attempt is good enough.
type AcceptancePolicy struct {
	Target      int
	MaxAttempts int
	HardFloor   int
	Backoff     time.Duration
}

func DefaultPolicy() AcceptancePolicy {
	return AcceptancePolicy{Target: 20, MaxAttempts: 3, HardFloor: 15, Backoff: 2 * time.Second}
}

// NearEnough is the smallest accepted count that ends generation early:
// max(floor(0.9 * target), target - 2), and never below one question.
func (p AcceptancePolicy) NearEnough() int {
	return max(1, p.Target*9/10, p.Target-2)
}

// Decide maps the accepted count of a 1-based attempt to the next state.
// It never returns a partial acceptance; see Controller.Run for the hard
// floor applied after the last attempt.
func (p AcceptancePolicy) Decide(accepted, attempt int) State {
	switch {
	case accepted >= p.NearEnough():
		return StateAccepted
	case attempt < p.MaxAttempts:
		return StateRetry
	default:
		return StateExhausted
	}
}

// Synthesizer produces unvalidated candidates for one attempt.
type Synthesizer interface {
	Synthesize(ctx context.Context, req generator.GenerationRequest) ([]models.CandidateQuestion, error)
}

// Outcome is the result of Controller.Run for one source.
type Outcome struct {
	State     State
	Questions []models.AcceptedQuestion
	Attempts  int
	Partial   bool
	// LastAccepted is the accepted count of the final attempt.
	LastAccepted int
	LastErr      error
}

func (o Outcome) Accepted() bool { return o.State == StateAccepted }

// Reason explains a failed outcome for the run summary.
func (o Outcome) Reason(target int) string {
	if o.LastErr != nil && o.LastAccepted == 0 {
		return fmt.Sprintf("generation failed after %d attempts: %v", o.Attempts, o.LastErr)
	}
	return fmt.Sprintf("only %d of %d questions accepted after %d attempts", o.LastAccepted, target, o.Attempts)
}

type Controller struct {
	synth  Synthesizer
	policy AcceptancePolicy
}

func NewController(synth Synthesizer, policy AcceptancePolicy) *Controller {
	return &Controller{synth: synth, policy: policy}
}

func (c *Controller) Policy() AcceptancePolicy { return c.policy }

// Run generates and validates batches until one is accepted or attempts
// run out. Every attempt starts from scratch. A synthesis or parse error
// uses up the attempt. The only error returned is a context error.
func (c *Controller) Run(ctx context.Context, req generator.GenerationRequest) (Outcome, error) {
	req.Target = c.policy.Target
	out := Outcome{State: StateGenerating}

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		logger := log.With().Str("source_id", req.SourceID).Int("attempt", attempt).Logger()
		out.Attempts = attempt
		out.State = StateGenerating

		candidates, err := c.synth.Synthesize(ctx, req)
		var accepted []models.AcceptedQuestion
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			logger.Warn().Err(err).Msg("Generation attempt failed")
			out.LastErr = err
		} else {
			out.State = StateValidating
			var verdicts []models.Verdict
			verdicts, accepted = generator.ValidateAll(candidates)
			out.LastErr = nil

			ev := logger.Info().Int("candidates", len(candidates)).Int("accepted", len(accepted))
			if len(accepted) < len(candidates) {
				ev = ev.Interface("rejections", generator.RejectionCounts(verdicts))
			}
			ev.Msg("Validated batch")
		}
		out.LastAccepted = len(accepted)

		out.State = c.policy.Decide(len(accepted), attempt)
		switch out.State {
		case StateAccepted:
			if len(accepted) > c.policy.Target {
				accepted = accepted[:c.policy.Target]
			}
			out.Questions = accepted
			c.review(req.SourceID, accepted)
			return out, nil

		case StateRetry:
			logger.Info().Int("accepted", len(accepted)).Int("needed", c.policy.NearEnough()).
				Dur("backoff", c.policy.Backoff).Msg("Below acceptance threshold, retrying")
			if err := sleep(ctx, c.policy.Backoff); err != nil {
				return out, err
			}

		case StateExhausted:
			if len(accepted) > 0 && len(accepted) >= c.policy.HardFloor {
				logger.Warn().Int("accepted", len(accepted)).Int("target", c.policy.Target).
					Msg("Attempts exhausted, keeping partial batch")
				out.State = StateAccepted
				out.Partial = true
				out.Questions = accepted
				c.review(req.SourceID, accepted)
				return out, nil
			}
			logger.Error().Int("accepted", len(accepted)).Int("floor", c.policy.HardFloor).
				Msg("Attempts exhausted below hard floor")
		}
	}

	return out, nil
}

func (c *Controller) review(sourceID string, accepted []models.AcceptedQuestion) {
	review := generator.ReviewBatch(accepted)
	for _, w := range review.Warnings {
		log.Warn().Str("source_id", sourceID).Msg("Batch review: " + w)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
