// internal/audit/auditor_test.go
package audit

import (
	"context"
	"strings"
	"testing"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditor(t *testing.T) *Auditor {
	return NewAuditor(logger.NewTestLogger(t))
}

func TestAudit_SecureContract(t *testing.T) {
	report, err := newTestAuditor(t).Audit(context.Background(), &Request{
		Client:       "MegaCorp",
		ContractName: "Token.sol",
		Source: `pragma solidity 0.8.24;
contract Token {
    mapping(address => uint256) balances;
    function transfer(address to, uint256 amount) external {
        require(balances[msg.sender] >= amount, "insufficient");
        balances[msg.sender] -= amount;
        balances[to] += amount;
    }
}`,
	})

	require.NoError(t, err)
	assert.Equal(t, models.AuditSecure, report.Verdict)
	assert.Empty(t, report.Findings)
	assert.NotEmpty(t, report.ID)
}

func TestAudit_CriticalFindings(t *testing.T) {
	report, err := newTestAuditor(t).Audit(context.Background(), &Request{
		Client:       "MegaCorp",
		ContractName: "Vault.sol",
		Source: `pragma solidity ^0.8.0;
contract Vault {
    function withdraw(uint256 amount) external {
        require(tx.origin == owner);
        (bool ok,) = msg.sender.call{value: amount}("");
    }
}`,
	})

	require.NoError(t, err)
	assert.Equal(t, models.AuditCritical, report.Verdict)
	assert.Equal(t, models.SeverityHigh, report.Severity)
	assert.Contains(t, strings.Join(report.Findings, " "), "tx.origin")
}

func TestAudit_MinorFindings(t *testing.T) {
	report, err := newTestAuditor(t).Audit(context.Background(), &Request{
		Client:       "MegaCorp",
		ContractName: "Lottery.sol",
		Source:       "contract Lottery {\n  uint256 seed = block.timestamp;\n}",
	})

	require.NoError(t, err)
	assert.Equal(t, models.AuditIssuesFound, report.Verdict)
	assert.Equal(t, models.SeverityMedium, report.Severity)
}

func TestAudit_FeeScalesWithSize(t *testing.T) {
	auditor := newTestAuditor(t)

	small, err := auditor.Audit(context.Background(), &Request{
		Client: "A", ContractName: "S.sol", Source: "contract S {}",
	})
	require.NoError(t, err)

	large, err := auditor.Audit(context.Background(), &Request{
		Client: "A", ContractName: "L.sol",
		Source: "contract L {\n" + strings.Repeat("  uint256 x;\n", 400) + "}",
	})
	require.NoError(t, err)

	assert.Greater(t, large.AmountCharged, small.AmountCharged)
	assert.LessOrEqual(t, large.AmountCharged, auditMaxFee)
}

func TestAudit_FeeCapped(t *testing.T) {
	report, err := newTestAuditor(t).Audit(context.Background(), &Request{
		Client: "A", ContractName: "Huge.sol",
		Source: strings.Repeat("uint256 x;\n", 10000),
	})

	require.NoError(t, err)
	assert.Equal(t, auditMaxFee, report.AmountCharged)
}

func TestAudit_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"missing client", Request{ContractName: "X.sol", Source: "contract X {}"}},
		{"missing contract name", Request{Client: "A", Source: "contract X {}"}},
		{"missing source", Request{Client: "A", ContractName: "X.sol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAuditor(t).Audit(context.Background(), &tt.req)
			assert.Error(t, err)
		})
	}
}
