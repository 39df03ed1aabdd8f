// internal/risk/risk_test.go
package risk

import (
	"testing"

	"repobounty/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		diff      string
		wantLevel Level
		wantAudit bool
	}{
		{
			name:      "auth module touched",
			title:     "fix: session refresh",
			diff:      `import { refresh } from './auth.service'`,
			wantLevel: LevelHigh,
			wantAudit: true,
		},
		{
			name:      "solidity contract",
			title:     "feat: escrow release",
			diff:      "diff --git a/contracts/Escrow.sol b/contracts/Escrow.sol",
			wantLevel: LevelHigh,
			wantAudit: true,
		},
		{
			name:      "title alone can flag",
			title:     "fix: crypto wallet derivation",
			diff:      "minor tweak",
			wantLevel: LevelHigh,
			wantAudit: true,
		},
		{
			name:      "key material path",
			title:     "chore: rotate",
			diff:      "moved file to keys/prod.pem",
			wantLevel: LevelHigh,
			wantAudit: true,
		},
		{
			name:      "plain UI change is low risk",
			title:     "style: button padding",
			diff:      ".btn { padding: 8px }",
			wantLevel: LevelLow,
			wantAudit: false,
		},
		{
			name:      "case insensitive match",
			title:     "Fix LOGIN. redirect loop",
			diff:      "",
			wantLevel: LevelHigh,
			wantAudit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(&models.Submission{Title: tt.title, Diff: tt.diff})
			assert.Equal(t, tt.wantLevel, c.Level)
			assert.Equal(t, tt.wantAudit, c.RequiresAudit)
			assert.NotEmpty(t, c.Reason)
		})
	}
}
