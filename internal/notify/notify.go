// internal/notify/notify.go
package notify

import (
	"context"
	"fmt"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// EmailSender is the slice of SES this package uses.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// TopicPublisher is the slice of SNS this package uses.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Config names the delivery endpoints.
type Config struct {
	SenderEmail    string
	RecipientEmail string
	AlertTopicARN  string
}

// Notifier sends payout receipts over SES and high-risk alerts over SNS.
// Either client may be nil; the corresponding channel is then silently off,
// which keeps local development free of AWS credentials.
type Notifier struct {
	config *Config
	email  EmailSender
	topic  TopicPublisher
	logger logger.Logger
}

func NewNotifier(config *Config, email EmailSender, topic TopicPublisher, log logger.Logger) *Notifier {
	return &Notifier{
		config: config,
		email:  email,
		topic:  topic,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// PayoutReceipt emails a settlement summary after a payout is marked sent.
func (n *Notifier) PayoutReceipt(ctx context.Context, eval *models.Evaluation) error {
	if n.email == nil || n.config.RecipientEmail == "" {
		return nil
	}

	subject := fmt.Sprintf("Bounty paid: %s ($%.2f USDC)", eval.PR.Title, eval.Payout.Amount)
	body := fmt.Sprintf(
		"PR: %s\nAuthor: %s\nRepo: %s\nScore: %d/100\nAmount: $%.2f USDC\nWallet: %s\n\n%s\n",
		eval.PR.Title, eval.PR.Author, eval.PR.Repo,
		eval.AI.Score, eval.Payout.Amount, eval.Payout.ToAddress,
		eval.AI.Reasoning,
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.config.SenderEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.config.RecipientEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send payout receipt: %w", err)
	}

	n.logger.Info("payout receipt sent", map[string]interface{}{"evaluationId": eval.ID})
	return nil
}

// HighRiskAlert publishes to the security topic when a submission needed an
// external audit.
func (n *Notifier) HighRiskAlert(ctx context.Context, eval *models.Evaluation) error {
	if n.topic == nil || n.config.AlertTopicARN == "" {
		return nil
	}

	message := fmt.Sprintf(
		"High-risk submission evaluated: %s by %s in %s (verdict %s, score %d). Security oracle commissioned for $%.2f.",
		eval.PR.Title, eval.PR.Author, eval.PR.Repo,
		eval.AI.Verdict, eval.AI.Score, eval.SecurityAudit.Cost,
	)

	_, err := n.topic.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.AlertTopicARN),
		Subject:  aws.String("High-risk submission"),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("publish high-risk alert: %w", err)
	}

	n.logger.Info("high-risk alert published", map[string]interface{}{"evaluationId": eval.ID})
	return nil
}
