// internal/models/evaluation.go
package models

import "time"

// Verdict is the binary outcome of an evaluation.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
)

// PayoutStatus tracks the outcome of a bounty payment.
type PayoutStatus string

const (
	PayoutSent    PayoutStatus = "sent"
	PayoutSkipped PayoutStatus = "skipped"
	PayoutQueued  PayoutStatus = "queued"
)

const (
	// MaxHighlights and MaxConcerns cap the narrative lists on every result.
	MaxHighlights = 4
	MaxConcerns   = 3
)

// EvaluationResult is the canonical shape every evaluator tier must produce.
// Remote tier output is normalized into this before it is accepted.
type EvaluationResult struct {
	Verdict               Verdict  `json:"verdict"`
	Score                 int      `json:"score"`
	Reasoning             string   `json:"reasoning"`
	Highlights            []string `json:"highlights"`
	Concerns              []string `json:"concerns"`
	SuggestedPayout       float64  `json:"suggestedPayout"`
	PricingRationale      string   `json:"pricingRationale,omitempty"`
	RequiresSecurityAudit bool     `json:"requiresSecurityAudit"`
}

// SubmissionSummary is the PR metadata echoed back on every evaluation record.
type SubmissionSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Repo   string `json:"repo"`
}

// Payout is the settlement half of an evaluation record. TxHash stays nil
// when the transfer has not confirmed yet.
type Payout struct {
	Amount    float64      `json:"amount"`
	Token     string       `json:"token"`
	ToAddress string       `json:"toAddress"`
	TxHash    *string      `json:"txHash"`
	Status    PayoutStatus `json:"status"`
}

// SecurityAudit records a subcontractor engagement for a high-risk submission.
type SecurityAudit struct {
	Triggered    bool    `json:"triggered"`
	Cost         float64 `json:"cost"`
	OracleWallet string  `json:"oracleWallet"`
}

// Evaluation is the persisted outcome of one settled submission.
type Evaluation struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	PR            SubmissionSummary `json:"pr"`
	AI            EvaluationResult  `json:"ai"`
	Payout        Payout            `json:"payout"`
	Source        string            `json:"source"`
	SecurityAudit *SecurityAudit    `json:"securityAudit,omitempty"`
}

// Stats is the aggregate view over all recorded evaluations.
type Stats struct {
	TotalEvaluated int     `json:"totalEvaluated"`
	Passed         int     `json:"passed"`
	Failed         int     `json:"failed"`
	PassRate       float64 `json:"passRate"`
	TotalPaid      float64 `json:"totalPaidUSDC"`
	AverageScore   float64 `json:"averageScore"`
}
