// internal/evaluator/local.go
package evaluator

import (
	"context"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"
	"repobounty/internal/pricing"
	"repobounty/internal/risk"
	"repobounty/internal/rubric"
)

// LocalTier is the deterministic fallback. It scores with the heuristic
// rubric entirely in-process, so it has no failure mode and guarantees every
// submission gets a verdict even with both remote tiers down.
type LocalTier struct {
	maxPayout float64
	logger    logger.Logger
}

func NewLocalTier(maxPayout float64, log logger.Logger) *LocalTier {
	return &LocalTier{
		maxPayout: maxPayout,
		logger:    log.WithFields(map[string]interface{}{"tier": "local"}),
	}
}

func (t *LocalTier) Name() string { return "local-heuristic" }

func (t *LocalTier) Evaluate(_ context.Context, sub *models.Submission) (*models.EvaluationResult, error) {
	sig := rubric.ExtractSignals(sub.Title, sub.Diff)
	assessment := rubric.Evaluate(sig, sub.LineCount())
	quote := pricing.Price(sig, assessment.Total, sub.LineCount())
	classification := risk.FromSignals(sig)

	verdict := models.VerdictFail
	payout := 0.0
	if assessment.Pass {
		verdict = models.VerdictPass
		payout = quote.Amount
		if payout > t.maxPayout {
			payout = t.maxPayout
		}
	}

	t.logger.Info("heuristic evaluation completed", map[string]interface{}{
		"verdict":   verdict,
		"score":     assessment.Total,
		"tier":      quote.Tier,
		"riskLevel": classification.Level,
	})

	return &models.EvaluationResult{
		Verdict:               verdict,
		Score:                 assessment.Total,
		Reasoning:             assessment.Reasoning,
		Highlights:            truncate(assessment.Highlights, models.MaxHighlights),
		Concerns:              truncate(assessment.Concerns, models.MaxConcerns),
		SuggestedPayout:       payout,
		PricingRationale:      quote.Rationale,
		RequiresSecurityAudit: classification.RequiresAudit,
	}, nil
}
