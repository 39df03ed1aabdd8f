// internal/evaluator/bedrock.go
package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockConfig drives the Bedrock fallback tier.
type BedrockConfig struct {
	ModelID   string
	MaxTokens int
	Timeout   time.Duration
	MaxPayout float64
}

// bedrockInvoker is the slice of the Bedrock runtime client this tier needs.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockTier evaluates through an Anthropic model on AWS Bedrock. It runs
// only when the primary remote tier fails.
type BedrockTier struct {
	config *BedrockConfig
	client bedrockInvoker
	logger logger.Logger
}

func NewBedrockTier(config *BedrockConfig, client bedrockInvoker, log logger.Logger) *BedrockTier {
	return &BedrockTier{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"tier": "bedrock"}),
	}
}

func (t *BedrockTier) Name() string { return "bedrock" }

func (t *BedrockTier) Evaluate(ctx context.Context, sub *models.Submission) (*models.EvaluationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	payload := map[string]interface{}{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        t.config.MaxTokens,
		"messages": []map[string]interface{}{
			{"role": "user", "content": buildPrompt(sub, t.config.MaxPayout)},
		},
	}
	body, _ := json.Marshal(payload)

	out, err := t.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(t.config.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrEvaluatorTimeout
		}
		return nil, fmt.Errorf("%w: invoke model: %v", ErrEvaluatorFailed, err)
	}

	var reply struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(out.Body, &reply); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrEvaluatorFailed, err)
	}
	if len(reply.Content) == 0 {
		return nil, fmt.Errorf("%w: empty model reply", ErrEvaluatorFailed)
	}

	result, err := normalizeReply(reply.Content[0].Text, t.config.MaxPayout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluatorFailed, err)
	}

	t.logger.Info("bedrock evaluation completed", map[string]interface{}{
		"verdict": result.Verdict,
		"score":   result.Score,
	})
	return result, nil
}
