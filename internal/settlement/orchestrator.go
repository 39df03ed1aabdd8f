// internal/settlement/orchestrator.go
package settlement

import (
	"context"
	"fmt"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/common/metrics"
	"repobounty/internal/common/observability"
	"repobounty/internal/models"
	"repobounty/internal/treasury"

	"github.com/google/uuid"
)

// Fee and wallet for the external security oracle commissioned on
// high-risk submissions.
const (
	SecurityOracleFee    = 1.00
	SecurityOracleWallet = "0x742d35Cc6634C0532925a3b844Bc9e7595f2bD28"
)

// Pipeline produces a verdict for a submission and names its source tier.
type Pipeline interface {
	Evaluate(ctx context.Context, sub *models.Submission) (*models.EvaluationResult, string, error)
}

// Sender initiates stablecoin transfers.
type Sender interface {
	Transfer(ctx context.Context, to string, amount float64, memo string) (string, error)
}

// Persister stores completed evaluations.
type Persister interface {
	SaveEvaluation(ctx context.Context, eval *models.Evaluation) error
}

// ResultCache memoizes evaluations by submission content.
type ResultCache interface {
	Get(ctx context.Context, sub *models.Submission) *models.Evaluation
	Put(ctx context.Context, sub *models.Submission, eval *models.Evaluation) error
}

// Indexer mirrors evaluations into the search index.
type Indexer interface {
	Index(ctx context.Context, eval *models.Evaluation) error
}

// Notifier delivers settlement notifications.
type Notifier interface {
	PayoutReceipt(ctx context.Context, eval *models.Evaluation) error
	HighRiskAlert(ctx context.Context, eval *models.Evaluation) error
}

// Orchestrator runs the full settlement flow for one submission: evaluate,
// commission a security audit when the change is high-risk, authorize the
// payout against the treasury, fire the transfer, and record everything.
//
// Cache, index and notifications are best-effort; only evaluation and the
// ledger are load-bearing.
type Orchestrator struct {
	pipeline Pipeline
	ledger   *treasury.Ledger
	sender   Sender
	store    Persister
	cache    ResultCache
	indexer  Indexer
	notifier Notifier
	obs      *observability.Observability
	logger   logger.Logger
}

type Option func(*Orchestrator)

func WithStore(p Persister) Option   { return func(o *Orchestrator) { o.store = p } }
func WithCache(c ResultCache) Option { return func(o *Orchestrator) { o.cache = c } }
func WithIndexer(i Indexer) Option   { return func(o *Orchestrator) { o.indexer = i } }
func WithNotifier(n Notifier) Option { return func(o *Orchestrator) { o.notifier = n } }

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

func NewOrchestrator(pipeline Pipeline, ledger *treasury.Ledger, sender Sender, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		pipeline: pipeline,
		ledger:   ledger,
		sender:   sender,
		logger:   log.WithFields(map[string]interface{}{"component": "settlement"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Settle evaluates and settles one submission end to end.
func (o *Orchestrator) Settle(ctx context.Context, sub *models.Submission) (*models.Evaluation, error) {
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("invalid submission: %w", err)
	}

	if o.cache != nil {
		if cached := o.cache.Get(ctx, sub); cached != nil {
			o.logger.Info("returning cached evaluation", map[string]interface{}{
				"submissionId": sub.ID,
				"evaluationId": cached.ID,
			})
			return cached, nil
		}
	}

	started := time.Now()
	result, source, err := o.pipeline.Evaluate(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("evaluate submission: %w", err)
	}

	// Escalation and payout both annotate the result narrative, so the
	// record is assembled only after they run.
	var secAudit *models.SecurityAudit
	if result.RequiresSecurityAudit && result.Verdict == models.VerdictPass {
		secAudit = o.commissionAudit(ctx, sub, result)
	}
	payout := o.settlePayout(ctx, sub, result)

	eval := &models.Evaluation{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		PR: models.SubmissionSummary{
			ID:     sub.ID,
			Title:  sub.Title,
			Author: sub.Author,
			Repo:   sub.Repo,
		},
		AI:            *result,
		Payout:        payout,
		Source:        source,
		SecurityAudit: secAudit,
	}

	o.record(ctx, sub, eval)

	metrics.EvaluationsTotal.WithLabelValues(string(result.Verdict), source).Inc()
	metrics.EvaluationDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	metrics.TreasuryNetBalance.Set(o.ledger.Snapshot().NetBalance)
	if o.obs != nil {
		o.obs.RecordSettlement(ctx, string(result.Verdict))
		o.obs.RecordSettlementDuration(ctx, time.Since(started), string(result.Verdict))
	}

	o.logger.Info("settlement completed", map[string]interface{}{
		"submissionId": sub.ID,
		"verdict":      result.Verdict,
		"score":        result.Score,
		"payoutStatus": eval.Payout.Status,
		"amount":       eval.Payout.Amount,
		"source":       source,
	})
	return eval, nil
}

// commissionAudit debits the oracle fee, fires the fee transfer and surfaces
// the hire in the result narrative. The debit is the commitment; a failed
// transfer is retried out of band. Only passing verdicts get here: a FAIL
// pays nothing, so there is no payout for the oracle to vet.
func (o *Orchestrator) commissionAudit(ctx context.Context, sub *models.Submission, result *models.EvaluationResult) *models.SecurityAudit {
	o.ledger.RecordSubcontractorSpend(SecurityOracleFee)
	metrics.SecurityAuditsTotal.Inc()

	result.Reasoning = fmt.Sprintf("HIGH-RISK: Security audit triggered. Hired Security Oracle Agent ($%.2f USDC). %s",
		SecurityOracleFee, result.Reasoning)
	result.Highlights = append([]string{"Security Oracle Agent subcontracted for elevated review"}, result.Highlights...)
	if len(result.Highlights) > models.MaxHighlights {
		result.Highlights = result.Highlights[:models.MaxHighlights]
	}

	if _, err := o.sender.Transfer(ctx, SecurityOracleWallet, SecurityOracleFee, "security audit "+sub.ID); err != nil {
		o.logger.Error("oracle fee transfer failed", map[string]interface{}{
			"submissionId": sub.ID,
			"error":        err.Error(),
		})
	}

	return &models.SecurityAudit{
		Triggered:    true,
		Cost:         SecurityOracleFee,
		OracleWallet: SecurityOracleWallet,
	}
}

// settlePayout authorizes against the ledger and fires the transfer. The
// transfer is deliberately optimistic: once the ledger has debited, the
// payout is "sent" and a failed transfer only leaves the hash empty for a
// reconciliation sweep to fill in.
func (o *Orchestrator) settlePayout(ctx context.Context, sub *models.Submission, result *models.EvaluationResult) models.Payout {
	payout := models.Payout{
		Token:     "USDC",
		ToAddress: sub.WalletAddress,
		Status:    models.PayoutSkipped,
	}

	if result.Verdict != models.VerdictPass || result.SuggestedPayout <= 0 {
		metrics.PayoutsTotal.WithLabelValues(string(payout.Status)).Inc()
		return payout
	}

	decision := o.ledger.Authorize(result.SuggestedPayout)
	payout.Amount = decision.Amount
	if decision.Clamped {
		result.PricingRationale += " (clamped to per-submission cap)"
	}

	if !decision.Authorized {
		payout.Status = models.PayoutQueued
		payout.Amount = 0
		metrics.PayoutsTotal.WithLabelValues(string(payout.Status)).Inc()
		return payout
	}

	payout.Status = models.PayoutSent
	if tx, err := o.sender.Transfer(ctx, sub.WalletAddress, decision.Amount, "bounty "+sub.ID); err != nil {
		o.logger.Error("bounty transfer failed, hash pending reconciliation", map[string]interface{}{
			"submissionId": sub.ID,
			"amount":       decision.Amount,
			"error":        err.Error(),
		})
	} else {
		payout.TxHash = &tx
	}

	metrics.PayoutsTotal.WithLabelValues(string(payout.Status)).Inc()
	metrics.PayoutAmount.WithLabelValues(string(payout.Status)).Add(payout.Amount)
	return payout
}

// record persists, caches, indexes and notifies. Persistence failures are
// logged, not returned: the verdict already happened and money may have
// moved, so the caller still gets the evaluation.
func (o *Orchestrator) record(ctx context.Context, sub *models.Submission, eval *models.Evaluation) {
	if o.store != nil {
		if err := o.store.SaveEvaluation(ctx, eval); err != nil {
			o.logger.Error("persist evaluation failed", map[string]interface{}{
				"evaluationId": eval.ID,
				"error":        err.Error(),
			})
		}
	}
	if o.cache != nil {
		if err := o.cache.Put(ctx, sub, eval); err != nil {
			o.logger.Warn("cache evaluation failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if o.indexer != nil {
		if err := o.indexer.Index(ctx, eval); err != nil {
			o.logger.Warn("index evaluation failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if o.notifier != nil {
		if eval.Payout.Status == models.PayoutSent {
			if err := o.notifier.PayoutReceipt(ctx, eval); err != nil {
				o.logger.Warn("payout receipt failed", map[string]interface{}{"error": err.Error()})
			}
		}
		if eval.SecurityAudit != nil {
			if err := o.notifier.HighRiskAlert(ctx, eval); err != nil {
				o.logger.Warn("high-risk alert failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

// Treasury exposes the ledger snapshot for the status surface.
func (o *Orchestrator) Treasury() treasury.Snapshot {
	return o.ledger.Snapshot()
}
