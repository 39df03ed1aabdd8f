// internal/workers/evaluate-submission/handler_test.go
package evaluatesubmission

import (
	"context"
	"errors"
	"testing"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:       5 * time.Second,
		MaxJobsActive: 1,
	}
}

type stubSettler struct {
	eval *models.Evaluation
	err  error
}

func (s *stubSettler) Settle(_ context.Context, _ *models.Submission) (*models.Evaluation, error) {
	return s.eval, s.err
}

func createTestInput() *Input {
	return &Input{
		Submission: models.Submission{
			ID:            "pr-101",
			Title:         "feat: rate limiter",
			Author:        "octocat",
			Repo:          "acme/api",
			WalletAddress: "0x1111111111111111111111111111111111111111",
			Diff:          "export function f() {}",
			Additions:     20,
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tx := "0xabc"
	settler := &stubSettler{
		eval: &models.Evaluation{
			ID: "eval-1",
			AI: models.EvaluationResult{Verdict: models.VerdictPass, Score: 75},
			Payout: models.Payout{
				Amount: 14.5,
				Status: models.PayoutSent,
				TxHash: &tx,
			},
			Source: "remote-ai",
		},
	}
	h := NewHandler(createTestConfig(), settler, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "eval-1", output.EvaluationID)
	assert.Equal(t, "PASS", output.Verdict)
	assert.Equal(t, 75, output.Score)
	assert.Equal(t, "sent", output.PayoutStatus)
	assert.Equal(t, 14.5, output.PayoutAmount)
	assert.Equal(t, "0xabc", output.TxHash)
	assert.False(t, output.AuditRequired)
}

func TestHandler_Execute_QueuedPayout(t *testing.T) {
	settler := &stubSettler{
		eval: &models.Evaluation{
			ID:     "eval-2",
			AI:     models.EvaluationResult{Verdict: models.VerdictPass, Score: 70},
			Payout: models.Payout{Status: models.PayoutQueued},
			Source: "local-heuristic",
		},
	}
	h := NewHandler(createTestConfig(), settler, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "queued", output.PayoutStatus)
	assert.Empty(t, output.TxHash)
}

func TestHandler_Execute_AuditFlagPropagates(t *testing.T) {
	settler := &stubSettler{
		eval: &models.Evaluation{
			ID:            "eval-3",
			AI:            models.EvaluationResult{Verdict: models.VerdictPass, Score: 80},
			Payout:        models.Payout{Status: models.PayoutSent, Amount: 30},
			SecurityAudit: &models.SecurityAudit{Triggered: true, Cost: 1.0},
			Source:        "remote-ai",
		},
	}
	h := NewHandler(createTestConfig(), settler, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.True(t, output.AuditRequired)
}

func TestHandler_Execute_SettlementError(t *testing.T) {
	settler := &stubSettler{err: errors.New("all tiers down")}
	h := NewHandler(createTestConfig(), settler, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), createTestInput())
	assert.Error(t, err)
}
