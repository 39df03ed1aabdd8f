// internal/evaluator/remote.go
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"
)

var (
	ErrEvaluatorTimeout = errors.New("EVALUATOR_TIMEOUT")
	ErrEvaluatorFailed  = errors.New("EVALUATOR_TIER_FAILED")
)

// RemoteConfig drives the hosted-model tier.
type RemoteConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxPayout   float64
}

// RemoteTier calls a hosted completion endpoint and normalizes its reply.
type RemoteTier struct {
	config *RemoteConfig
	client *http.Client
	logger logger.Logger
}

func NewRemoteTier(config *RemoteConfig, log logger.Logger) *RemoteTier {
	return &RemoteTier{
		config: config,
		// No client timeout; the per-call context bounds each request.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"tier": "remote"}),
	}
}

func (t *RemoteTier) Name() string { return "remote-ai" }

func (t *RemoteTier) Evaluate(ctx context.Context, sub *models.Submission) (*models.EvaluationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	requestBody := map[string]interface{}{
		"model":       t.config.Model,
		"prompt":      buildPrompt(sub, t.config.MaxPayout),
		"max_tokens":  t.config.MaxTokens,
		"temperature": t.config.Temperature,
	}
	body, _ := json.Marshal(requestBody)

	// One attempt per submission. A failure here means the pipeline falls
	// to the next tier rather than retrying in place.
	req, err := http.NewRequestWithContext(ctx, "POST", t.config.BaseURL+"/api/ai/evaluate", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluatorFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.config.APIKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrEvaluatorTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrEvaluatorFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrEvaluatorFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrEvaluatorFailed, err)
	}

	result, err := normalizeReply(apiResponse.Text, t.config.MaxPayout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluatorFailed, err)
	}

	t.logger.Info("remote evaluation completed", map[string]interface{}{
		"verdict": result.Verdict,
		"score":   result.Score,
	})
	return result, nil
}
