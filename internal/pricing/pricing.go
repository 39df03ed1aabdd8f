// internal/pricing/pricing.go
package pricing

import (
	"fmt"
	"math"

	"repobounty/internal/rubric"
)

// Tier identifies which pricing band a submission landed in.
type Tier string

const (
	TierSecurityFix Tier = "security-fix"
	TierRefactor    Tier = "refactor"
	TierFeature     Tier = "feature"
	TierSmallFix    Tier = "small-fix"
	TierTrivial     Tier = "trivial"
)

// band is a floor plus a score-proportional span: amount = floor + (total/100)*span.
type band struct {
	tier  Tier
	floor float64
	span  float64
	label string
}

var bands = map[Tier]band{
	TierSecurityFix: {TierSecurityFix, 35, 15, "security fix"},
	TierRefactor:    {TierRefactor, 20, 15, "substantial refactor"},
	TierFeature:     {TierFeature, 8, 12, "typed feature with error handling"},
	TierSmallFix:    {TierSmallFix, 2, 6, "small fix"},
	TierTrivial:     {TierTrivial, 0.5, 1.5, "trivial change"},
}

// Quote is a priced submission: the USDC amount, the band it fell in, and a
// one-line rationale for the settlement report.
type Quote struct {
	Amount    float64 `json:"amount"`
	Tier      Tier    `json:"tier"`
	Rationale string  `json:"rationale"`
}

// Price maps a scored submission onto the payout bands. The first matching
// predicate wins; order is most-valuable first, so a change qualifying for
// several bands always gets the richest one.
func Price(sig rubric.Signals, total, lineCount int) Quote {
	b := classify(sig, lineCount)
	amount := round2(b.floor + float64(total)/100*b.span)
	return Quote{
		Amount:    amount,
		Tier:      b.tier,
		Rationale: fmt.Sprintf("%s band: $%.2f base + score %d/100 over a $%.2f span", b.label, b.floor, total, b.span),
	}
}

func classify(sig rubric.Signals, lineCount int) band {
	switch {
	case sig.HasSecurityFix && lineCount > 20:
		return bands[TierSecurityFix]
	case sig.HasClass && sig.HasCleanup && lineCount > 50:
		return bands[TierRefactor]
	case sig.HasTypes && sig.HasErrorHandling && lineCount > 30:
		return bands[TierFeature]
	case lineCount > 10:
		return bands[TierSmallFix]
	default:
		return bands[TierTrivial]
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
