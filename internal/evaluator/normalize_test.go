// internal/evaluator/normalize_test.go
package evaluator

import (
	"testing"

	"repobounty/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeReply(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantErr  error
		validate func(t *testing.T, r *models.EvaluationResult)
	}{
		{
			name: "clean JSON reply",
			text: `{"verdict":"PASS","score":72,"reasoning":"solid","highlights":["a"],"concerns":[],"suggested_payout":12.5,"pricing_rationale":"feature band","requires_security_audit":false}`,
			validate: func(t *testing.T, r *models.EvaluationResult) {
				assert.Equal(t, models.VerdictPass, r.Verdict)
				assert.Equal(t, 72, r.Score)
				assert.Equal(t, 12.5, r.SuggestedPayout)
			},
		},
		{
			name: "JSON wrapped in prose and markdown",
			text: "Sure! Here is my evaluation:\n```json\n{\"verdict\":\"FAIL\",\"score\":40,\"reasoning\":\"weak\"}\n```\nHope that helps.",
			validate: func(t *testing.T, r *models.EvaluationResult) {
				assert.Equal(t, models.VerdictFail, r.Verdict)
				assert.Equal(t, 40, r.Score)
			},
		},
		{
			name:    "no JSON at all",
			text:    "I cannot evaluate this submission.",
			wantErr: ErrNoJSONPayload,
		},
		{
			name:    "missing required field",
			text:    `{"score": 50}`,
			wantErr: ErrMalformedReply,
		},
		{
			name:    "verdict outside the enum",
			text:    `{"verdict":"MAYBE","score":50}`,
			wantErr: ErrMalformedReply,
		},
		{
			name:    "score is not a number",
			text:    `{"verdict":"PASS","score":"eighty"}`,
			wantErr: ErrMalformedReply,
		},
		{
			name: "score clamped to 100",
			text: `{"verdict":"PASS","score":240,"reasoning":"x"}`,
			validate: func(t *testing.T, r *models.EvaluationResult) {
				assert.Equal(t, 100, r.Score)
			},
		},
		{
			name: "payout clamped to cap",
			text: `{"verdict":"PASS","score":90,"suggested_payout":9000}`,
			validate: func(t *testing.T, r *models.EvaluationResult) {
				assert.Equal(t, 50.0, r.SuggestedPayout)
			},
		},
		{
			name: "negative payout clamped to zero",
			text: `{"verdict":"FAIL","score":10,"suggested_payout":-5}`,
			validate: func(t *testing.T, r *models.EvaluationResult) {
				assert.Equal(t, 0.0, r.SuggestedPayout)
			},
		},
		{
			name: "narrative lists truncated",
			text: `{"verdict":"PASS","score":70,"highlights":["1","2","3","4","5","6"],"concerns":["1","2","3","4","5"]}`,
			validate: func(t *testing.T, r *models.EvaluationResult) {
				assert.Len(t, r.Highlights, models.MaxHighlights)
				assert.Len(t, r.Concerns, models.MaxConcerns)
			},
		},
		{
			name: "empty reasoning filled in",
			text: `{"verdict":"PASS","score":70}`,
			validate: func(t *testing.T, r *models.EvaluationResult) {
				assert.NotEmpty(t, r.Reasoning)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizeReply(tt.text, 50)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			tt.validate(t, result)
		})
	}
}
