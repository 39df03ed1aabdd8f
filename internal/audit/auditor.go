// internal/audit/auditor.go
package audit

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/google/uuid"
)

// Pricing for enterprise engagements: a flat base plus a per-line rate,
// capped so large contracts stay quotable.
const (
	auditBaseFee     = 100.0
	auditPerLineRate = 0.50
	auditMaxFee      = 2000.0
)

// Request is an enterprise audit engagement.
type Request struct {
	Client       string `json:"client"`
	ContractName string `json:"contractName"`
	Source       string `json:"source"`
}

// Validate rejects engagements missing the fields pricing and reporting need.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Client) == "" {
		return fmt.Errorf("client is required")
	}
	if strings.TrimSpace(r.ContractName) == "" {
		return fmt.Errorf("contractName is required")
	}
	if strings.TrimSpace(r.Source) == "" {
		return fmt.Errorf("source is required")
	}
	return nil
}

type finding struct {
	pattern  *regexp.Regexp
	message  string
	severity models.AuditSeverity
}

var contractChecks = []finding{
	{regexp.MustCompile(`tx\.origin`), "uses tx.origin for authorization", models.SeverityHigh},
	{regexp.MustCompile(`selfdestruct\s*\(`), "contract can self-destruct", models.SeverityHigh},
	{regexp.MustCompile(`delegatecall`), "delegatecall to external code", models.SeverityHigh},
	{regexp.MustCompile(`\.call\{value:`), "low-level value call, check reentrancy guards", models.SeverityHigh},
	{regexp.MustCompile(`block\.timestamp`), "relies on block.timestamp", models.SeverityMedium},
	{regexp.MustCompile(`unchecked\s*\{`), "unchecked arithmetic block", models.SeverityMedium},
	{regexp.MustCompile(`(?i)//\s*TODO`), "unfinished TODO in production contract", models.SeverityLow},
	{regexp.MustCompile(`pragma solidity\s+\^`), "floating pragma version", models.SeverityLow},
}

// Auditor runs paid security reviews of client contracts. Revenue lands in
// the treasury through the caller; the auditor only produces the report.
type Auditor struct {
	logger logger.Logger
}

func NewAuditor(log logger.Logger) *Auditor {
	return &Auditor{
		logger: log.WithFields(map[string]interface{}{"component": "auditor"}),
	}
}

// Audit reviews the contract source and prices the engagement by size.
func (a *Auditor) Audit(_ context.Context, req *Request) (*models.EnterpriseAudit, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid audit request: %w", err)
	}

	lines := strings.Count(req.Source, "\n") + 1
	fee := math.Min(auditBaseFee+float64(lines)*auditPerLineRate, auditMaxFee)

	var findings []string
	severity := models.SeverityLow
	for _, check := range contractChecks {
		if check.pattern.MatchString(req.Source) {
			findings = append(findings, check.message)
			if rank(check.severity) > rank(severity) {
				severity = check.severity
			}
		}
	}

	verdict := models.AuditSecure
	switch {
	case severity == models.SeverityHigh:
		verdict = models.AuditCritical
	case len(findings) > 0:
		verdict = models.AuditIssuesFound
	}

	report := &models.EnterpriseAudit{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		Client:        req.Client,
		ContractName:  req.ContractName,
		LinesOfCode:   lines,
		AmountCharged: fee,
		Verdict:       verdict,
		Summary:       summarize(req.ContractName, verdict, findings),
		Findings:      findings,
		Severity:      severity,
	}

	a.logger.Info("enterprise audit completed", map[string]interface{}{
		"client":   req.Client,
		"contract": req.ContractName,
		"verdict":  verdict,
		"fee":      fee,
	})
	return report, nil
}

func rank(s models.AuditSeverity) int {
	switch s {
	case models.SeverityHigh:
		return 3
	case models.SeverityMedium:
		return 2
	default:
		return 1
	}
}

func summarize(name string, verdict models.AuditVerdict, findings []string) string {
	switch verdict {
	case models.AuditCritical:
		return fmt.Sprintf("%s has critical issues requiring fixes before deployment: %s", name, strings.Join(findings, "; "))
	case models.AuditIssuesFound:
		return fmt.Sprintf("%s is deployable after addressing: %s", name, strings.Join(findings, "; "))
	default:
		return fmt.Sprintf("%s passed review with no findings.", name)
	}
}
