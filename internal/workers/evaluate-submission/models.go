// internal/workers/evaluate-submission/models.go
package evaluatesubmission

import "repobounty/internal/models"

type Input struct {
	Submission models.Submission `json:"submission"`
}

type Output struct {
	EvaluationID  string  `json:"evaluationId"`
	Verdict       string  `json:"verdict"`
	Score         int     `json:"score"`
	PayoutStatus  string  `json:"payoutStatus"`
	PayoutAmount  float64 `json:"payoutAmount"`
	TxHash        string  `json:"txHash,omitempty"`
	Source        string  `json:"source"`
	AuditRequired bool    `json:"auditRequired"`
}
