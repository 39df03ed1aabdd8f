// internal/models/audit.go
package models

import "time"

// AuditVerdict classifies an enterprise contract audit outcome.
type AuditVerdict string

const (
	AuditSecure      AuditVerdict = "SECURE"
	AuditIssuesFound AuditVerdict = "ISSUES_FOUND"
	AuditCritical    AuditVerdict = "CRITICAL"
)

// AuditSeverity ranks the worst finding in an audit.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// EnterpriseAudit is one paid contract review on the revenue side of the
// treasury.
type EnterpriseAudit struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Client        string        `json:"client"`
	ContractName  string        `json:"contractName"`
	LinesOfCode   int           `json:"linesOfCode"`
	AmountCharged float64       `json:"amountCharged"`
	Verdict       AuditVerdict  `json:"verdict"`
	Summary       string        `json:"summary"`
	Findings      []string      `json:"findings"`
	Severity      AuditSeverity `json:"severity"`
}
