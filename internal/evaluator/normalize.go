// internal/evaluator/normalize.go
package evaluator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"repobounty/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrNoJSONPayload  = errors.New("NO_JSON_PAYLOAD")
	ErrMalformedReply = errors.New("RESPONSE_MALFORMED")
)

// Model replies arrive as free-form text with a JSON object somewhere inside
// (often wrapped in prose or markdown fences). Grab the widest brace span.
var reJSONBlock = regexp.MustCompile(`(?s)\{.*\}`)

// verdictSchema is the contract a model reply must meet before anything
// downstream trusts it. Anything failing validation counts as a tier failure.
var verdictSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"verdict", "score"},
	"properties": map[string]interface{}{
		"verdict":   map[string]interface{}{"type": "string", "enum": []interface{}{"PASS", "FAIL"}},
		"score":     map[string]interface{}{"type": "number"},
		"reasoning": map[string]interface{}{"type": "string"},
		"highlights": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"concerns": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"suggested_payout":        map[string]interface{}{"type": "number"},
		"pricing_rationale":       map[string]interface{}{"type": "string"},
		"requires_security_audit": map[string]interface{}{"type": "boolean"},
	},
}

type rawVerdict struct {
	Verdict               string   `json:"verdict"`
	Score                 float64  `json:"score"`
	Reasoning             string   `json:"reasoning"`
	Highlights            []string `json:"highlights"`
	Concerns              []string `json:"concerns"`
	SuggestedPayout       float64  `json:"suggested_payout"`
	PricingRationale      string   `json:"pricing_rationale"`
	RequiresSecurityAudit bool     `json:"requires_security_audit"`
}

// normalizeReply turns a free-form model reply into a bounded EvaluationResult
// or reports why the reply cannot be trusted. Scores clamp to [0,100], the
// payout clamps to [0,maxPayout], and the narrative lists are truncated.
func normalizeReply(text string, maxPayout float64) (*models.EvaluationResult, error) {
	block := reJSONBlock.FindString(text)
	if block == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrNoJSONPayload)
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(block), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(verdictSchema), gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: schema check: %v", ErrMalformedReply, err)
	}
	if !result.Valid() {
		var issues []string
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedReply, strings.Join(issues, "; "))
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	verdict := models.Verdict(strings.ToUpper(strings.TrimSpace(raw.Verdict)))
	if verdict != models.VerdictPass && verdict != models.VerdictFail {
		return nil, fmt.Errorf("%w: unknown verdict %q", ErrMalformedReply, raw.Verdict)
	}

	score := int(raw.Score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	payout := raw.SuggestedPayout
	if payout < 0 {
		payout = 0
	}
	if payout > maxPayout {
		payout = maxPayout
	}

	reasoning := raw.Reasoning
	if reasoning == "" {
		reasoning = "no reasoning provided by evaluator"
	}

	return &models.EvaluationResult{
		Verdict:               verdict,
		Score:                 score,
		Reasoning:             reasoning,
		Highlights:            truncate(raw.Highlights, models.MaxHighlights),
		Concerns:              truncate(raw.Concerns, models.MaxConcerns),
		SuggestedPayout:       payout,
		PricingRationale:      raw.PricingRationale,
		RequiresSecurityAudit: raw.RequiresSecurityAudit,
	}, nil
}

func truncate(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
