// internal/evaluator/evaluator.go
package evaluator

import (
	"context"
	"errors"

	"repobounty/internal/common/logger"
	"repobounty/internal/common/metrics"
	"repobounty/internal/models"
)

// Tier is one evaluation strategy in the fallback chain.
type Tier interface {
	Name() string
	Evaluate(ctx context.Context, sub *models.Submission) (*models.EvaluationResult, error)
}

// Pipeline walks its tiers in order and returns the first result. The last
// tier is expected to be infallible (the local heuristic), so a pipeline
// built with NewPipeline never leaves a submission unevaluated unless the
// caller's context is already dead.
type Pipeline struct {
	tiers  []Tier
	logger logger.Logger
}

// NewPipeline orders the tiers: primary remote model, Bedrock fallback,
// local heuristic. Remote tiers may be nil when not configured.
func NewPipeline(remote *RemoteTier, bedrock *BedrockTier, local *LocalTier, log logger.Logger) *Pipeline {
	var tiers []Tier
	if remote != nil {
		tiers = append(tiers, remote)
	}
	if bedrock != nil {
		tiers = append(tiers, bedrock)
	}
	tiers = append(tiers, local)
	return &Pipeline{tiers: tiers, logger: log}
}

// Evaluate runs the fallback chain. The returned source names the tier that
// produced the verdict.
func (p *Pipeline) Evaluate(ctx context.Context, sub *models.Submission) (*models.EvaluationResult, string, error) {
	var lastErr error
	for _, tier := range p.tiers {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}

		result, err := tier.Evaluate(ctx, sub)
		if err == nil {
			metrics.TierAttempts.WithLabelValues(tier.Name(), "ok").Inc()
			return result, tier.Name(), nil
		}

		metrics.TierAttempts.WithLabelValues(tier.Name(), "failed").Inc()
		p.logger.Warn("evaluation tier failed, falling back", map[string]interface{}{
			"tier":  tier.Name(),
			"error": err.Error(),
		})
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("no evaluation tiers configured")
	}
	return nil, "", lastErr
}
