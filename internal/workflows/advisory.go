package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// AdvisoryInput is the input for the advisory workflow.
type AdvisoryInput struct {
	FieldID string
	// Re-poll bounds while the satellite reading is pending.
	RetryMin time.Duration
	RetryMax time.Duration
	// Give up after this many processing rounds.
	MaxAttempts int
}

// AdvisoryWorkflow re-computes a field's irrigation recommendation until
// the satellite soil moisture resolves, then announces the ready result.
// While the recommendation is still processing, the workflow sleeps for
// the ETA the engine reported, clamped to the configured bounds.
func AdvisoryWorkflow(ctx workflow.Context, input AdvisoryInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting advisory workflow", "fieldID", input.FieldID)

	if input.RetryMin <= 0 {
		input.RetryMin = 1 * time.Minute
	}
	if input.RetryMax < input.RetryMin {
		input.RetryMax = 10 * time.Minute
	}
	if input.MaxAttempts <= 0 {
		input.MaxAttempts = 12
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 60 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	for attempt := 1; attempt <= input.MaxAttempts; attempt++ {
		var result AdvisoryResult
		if err := workflow.ExecuteActivity(ctx, "ComputeRecommendation", input.FieldID).Get(ctx, &result); err != nil {
			return err
		}

		if result.Ready {
			if err := workflow.ExecuteActivity(ctx, "AnnounceRecommendation", input.FieldID).Get(ctx, nil); err != nil {
				logger.Warn("announce failed", "error", err)
				return err
			}
			logger.Info("Recommendation ready", "fieldID", input.FieldID, "mm", result.Mm, "attempts", attempt)
			return nil
		}

		wait := time.Duration(result.ETAMinutes) * time.Minute
		if wait < input.RetryMin {
			wait = input.RetryMin
		}
		if wait > input.RetryMax {
			wait = input.RetryMax
		}
		logger.Info("Soil moisture pending, re-polling", "fieldID", input.FieldID, "wait", wait.String())
		if err := workflow.Sleep(ctx, wait); err != nil {
			// Cancelled while waiting
			return err
		}
	}

	logger.Warn("Giving up on advisory", "fieldID", input.FieldID, "attempts", input.MaxAttempts)
	return temporal.NewApplicationError("soil moisture never resolved", "AdvisoryTimeout")
}
