// internal/notify/notify_test.go
package notify

import (
	"context"
	"testing"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	inputs []*ses.SendEmailInput
}

func (f *fakeEmail) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, nil
}

type fakeTopic struct {
	inputs []*sns.PublishInput
}

func (f *fakeTopic) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, nil
}

func notifyTestEvaluation() *models.Evaluation {
	return &models.Evaluation{
		ID: "eval-1",
		PR: models.SubmissionSummary{Title: "feat: limiter", Author: "octocat", Repo: "acme/api"},
		AI: models.EvaluationResult{Verdict: models.VerdictPass, Score: 75, Reasoning: "solid"},
		Payout: models.Payout{
			Amount:    14.5,
			Token:     "USDC",
			ToAddress: "0x1111111111111111111111111111111111111111",
			Status:    models.PayoutSent,
		},
		SecurityAudit: &models.SecurityAudit{Triggered: true, Cost: 1.0, OracleWallet: "0xoracle"},
	}
}

func TestPayoutReceipt(t *testing.T) {
	email := &fakeEmail{}
	n := NewNotifier(&Config{
		SenderEmail:    "bounties@acme.dev",
		RecipientEmail: "maintainers@acme.dev",
	}, email, nil, logger.NewTestLogger(t))

	err := n.PayoutReceipt(context.Background(), notifyTestEvaluation())

	require.NoError(t, err)
	require.Len(t, email.inputs, 1)
	assert.Contains(t, *email.inputs[0].Message.Subject.Data, "$14.50")
	assert.Contains(t, *email.inputs[0].Message.Body.Text.Data, "octocat")
}

func TestPayoutReceipt_NoClientIsNoOp(t *testing.T) {
	n := NewNotifier(&Config{RecipientEmail: "x@y.z"}, nil, nil, logger.NewTestLogger(t))
	assert.NoError(t, n.PayoutReceipt(context.Background(), notifyTestEvaluation()))
}

func TestHighRiskAlert(t *testing.T) {
	topic := &fakeTopic{}
	n := NewNotifier(&Config{AlertTopicARN: "arn:aws:sns:us-east-1:1:alerts"}, nil, topic, logger.NewTestLogger(t))

	err := n.HighRiskAlert(context.Background(), notifyTestEvaluation())

	require.NoError(t, err)
	require.Len(t, topic.inputs, 1)
	assert.Contains(t, *topic.inputs[0].Message, "Security oracle")
}

func TestHighRiskAlert_NoTopicIsNoOp(t *testing.T) {
	n := NewNotifier(&Config{}, nil, &fakeTopic{}, logger.NewTestLogger(t))
	assert.NoError(t, n.HighRiskAlert(context.Background(), notifyTestEvaluation()))
}
