package workflows

import (
	"context"
	"fmt"

	"github.com/adeelhaq/sinchai/internal/core/domain"
	"github.com/adeelhaq/sinchai/internal/core/ports"
	"github.com/adeelhaq/sinchai/internal/core/usecases"
)

// AdvisoryResult is what ComputeRecommendation hands back to the workflow.
type AdvisoryResult struct {
	Ready      bool
	Mm         float64
	ETAMinutes int
}

// AdvisoryActivities holds the activity implementations for the advisory
// workflow.
type AdvisoryActivities struct {
	Recommendations *usecases.RecommendationService
	Events          ports.EventPublisher
}

// ComputeRecommendation runs the irrigation engine for a field and
// reports whether the result is ready or still waiting on satellite data.
func (a *AdvisoryActivities) ComputeRecommendation(ctx context.Context, fieldID string) (AdvisoryResult, error) {
	rec, err := a.Recommendations.Compute(ctx, fieldID, nil)
	if err != nil {
		return AdvisoryResult{}, fmt.Errorf("compute recommendation: %w", err)
	}
	return AdvisoryResult{
		Ready:      rec.Status == domain.RecommendationReady,
		Mm:         rec.Mm,
		ETAMinutes: rec.ETAMinutes,
	}, nil
}

// AnnounceRecommendation recomputes the now-ready recommendation and
// publishes it so subscribed clients get the update push-style.
func (a *AdvisoryActivities) AnnounceRecommendation(ctx context.Context, fieldID string) error {
	rec, err := a.Recommendations.Compute(ctx, fieldID, nil)
	if err != nil {
		return fmt.Errorf("recompute recommendation: %w", err)
	}
	if a.Events == nil {
		return nil
	}
	if err := a.Events.PublishRecommendationReady(ctx, rec); err != nil {
		return fmt.Errorf("publish recommendation: %w", err)
	}
	return nil
}
