// internal/risk/risk.go
package risk

import (
	"repobounty/internal/models"
	"repobounty/internal/rubric"
)

// Level buckets a submission by how much damage a bad merge could do.
type Level string

const (
	LevelLow  Level = "low"
	LevelHigh Level = "high"
)

// Classification is the risk verdict for a submission. High-risk surfaces
// (auth flows, contracts, key material) require an independent security
// audit before any payout is authorized.
type Classification struct {
	Level         Level  `json:"level"`
	RequiresAudit bool   `json:"requiresAudit"`
	Reason        string `json:"reason"`
}

// Classify inspects the submission title and diff for security-sensitive
// surfaces. The pattern set errs toward flagging: a false positive costs one
// audit fee, a false negative could cost the treasury.
func Classify(sub *models.Submission) Classification {
	sig := rubric.ExtractSignals(sub.Title, sub.Diff)
	return FromSignals(sig)
}

// FromSignals builds a classification from already-extracted signals, so the
// evaluator pipeline can reuse its single extraction pass.
func FromSignals(sig rubric.Signals) Classification {
	if sig.HighRisk {
		return Classification{
			Level:         LevelHigh,
			RequiresAudit: true,
			Reason:        "touches a security-sensitive surface (auth, contracts, crypto, or key material)",
		}
	}
	return Classification{
		Level:  LevelLow,
		Reason: "no security-sensitive surface detected",
	}
}
