// internal/pricing/pricing_test.go
package pricing

import (
	"testing"

	"repobounty/internal/rubric"

	"github.com/stretchr/testify/assert"
)

func TestPrice_BandSelection(t *testing.T) {
	tests := []struct {
		name       string
		sig        rubric.Signals
		total      int
		lineCount  int
		wantTier   Tier
		wantAmount float64
	}{
		{
			name:       "security fix wins over everything",
			sig:        rubric.Signals{HasSecurityFix: true, HasClass: true, HasCleanup: true, HasTypes: true, HasErrorHandling: true},
			total:      80,
			lineCount:  60,
			wantTier:   TierSecurityFix,
			wantAmount: 47, // 35 + 0.80*15
		},
		{
			name:       "refactor band",
			sig:        rubric.Signals{HasClass: true, HasCleanup: true},
			total:      70,
			lineCount:  60,
			wantTier:   TierRefactor,
			wantAmount: 30.5, // 20 + 0.70*15
		},
		{
			name:       "feature band",
			sig:        rubric.Signals{HasTypes: true, HasErrorHandling: true},
			total:      50,
			lineCount:  35,
			wantTier:   TierFeature,
			wantAmount: 14, // 8 + 0.50*12
		},
		{
			name:       "small fix band",
			sig:        rubric.Signals{},
			total:      50,
			lineCount:  15,
			wantTier:   TierSmallFix,
			wantAmount: 5, // 2 + 0.50*6
		},
		{
			name:       "trivial band",
			sig:        rubric.Signals{},
			total:      40,
			lineCount:  3,
			wantTier:   TierTrivial,
			wantAmount: 1.1, // 0.5 + 0.40*1.5
		},
		{
			name:       "security fix predicate needs more than 20 lines",
			sig:        rubric.Signals{HasSecurityFix: true},
			total:      60,
			lineCount:  15,
			wantTier:   TierSmallFix,
			wantAmount: 5.6, // 2 + 0.60*6
		},
		{
			name:       "refactor predicate needs more than 50 lines",
			sig:        rubric.Signals{HasClass: true, HasCleanup: true, HasTypes: true, HasErrorHandling: true},
			total:      60,
			lineCount:  40,
			wantTier:   TierFeature,
			wantAmount: 15.2, // 8 + 0.60*12
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Price(tt.sig, tt.total, tt.lineCount)
			assert.Equal(t, tt.wantTier, q.Tier)
			assert.InDelta(t, tt.wantAmount, q.Amount, 0.001)
			assert.NotEmpty(t, q.Rationale)
		})
	}
}

func TestPrice_ScoreBounds(t *testing.T) {
	// Score 0 pays the band floor, score 100 pays floor+span.
	low := Price(rubric.Signals{HasSecurityFix: true}, 0, 30)
	high := Price(rubric.Signals{HasSecurityFix: true}, 100, 30)

	assert.InDelta(t, 35.0, low.Amount, 0.001)
	assert.InDelta(t, 50.0, high.Amount, 0.001)
}

func TestPrice_RoundsToCents(t *testing.T) {
	// 0.5 + 0.33*1.5 = 0.995 → 1.00
	q := Price(rubric.Signals{}, 33, 2)
	assert.InDelta(t, 1.0, q.Amount, 0.0001)
}
