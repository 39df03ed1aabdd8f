// internal/rubric/rubric.go
package rubric

import (
	"fmt"
	"strings"
)

const (
	// PassThreshold is the minimum total score for a passing verdict.
	PassThreshold = 60

	// SubScoreMax caps each rubric dimension.
	SubScoreMax = 25

	baselineQuality   = 12
	baselineSecurity  = 15
	baselineImpact    = 10
	baselinePractices = 12
)

// Score holds the four rubric dimensions. Each is clamped to [0,25] so
// Total() is always in [0,100].
type Score struct {
	Quality   int `json:"quality"`
	Security  int `json:"security"`
	Impact    int `json:"impact"`
	Practices int `json:"practices"`
}

// Total sums the four sub-scores.
func (s Score) Total() int {
	return s.Quality + s.Security + s.Impact + s.Practices
}

// Assessment is a fully scored submission: the sub-scores plus the
// human-readable narrative fields the settlement report carries.
type Assessment struct {
	Score      Score
	Total      int
	Pass       bool
	Reasoning  string
	Highlights []string
	Concerns   []string
}

// Evaluate scores a submission's extracted signals against the rubric.
// A detected hardcoded secret resets the security baseline to zero and
// forces a failing verdict no matter how high the total climbs.
func Evaluate(sig Signals, lineCount int) Assessment {
	quality := baselineQuality
	security := baselineSecurity
	impact := baselineImpact
	practices := baselinePractices

	var highlights, concerns []string

	if sig.HasTypes {
		quality += 4
		highlights = append(highlights, "Explicit type annotations")
	}
	if sig.HasInterface {
		quality += 3
		highlights = append(highlights, "Defines clear interfaces")
	}
	if sig.HasClass {
		quality += 2
	}
	if sig.HasExport {
		quality++
	}
	if sig.CommentCount >= 2 {
		quality += 2
		highlights = append(highlights, "Well-commented code")
	}
	if sig.HasSuppressedCheck {
		quality -= 5
		concerns = append(concerns, "Suppresses type checking with @ts-ignore")
	}
	if sig.HasWeakTypes {
		quality -= 3
		concerns = append(concerns, "Uses weak 'any' types")
	}
	if sig.DebugLogCount > 3 {
		quality -= 8
		concerns = append(concerns, fmt.Sprintf("Excessive debug logging (%d statements)", sig.DebugLogCount))
	}

	// A secret resets security to zero before the remaining adjustments;
	// the verdict override below is what makes it an unconditional fail.
	if sig.HasSecrets {
		security = 0
		concerns = append(concerns, "CRITICAL: hardcoded secret detected in diff")
	}
	if sig.HasInputValidation {
		security += 5
		highlights = append(highlights, "Input validation present")
	}
	if sig.HasSecurityFix {
		security += 5
		highlights = append(highlights, "Addresses a security issue")
	}
	if sig.DebugLogCount > 2 {
		security -= 3
	}

	// Line-count bonuses stack: a large change clears both thresholds.
	if lineCount > 40 {
		impact += 5
		highlights = append(highlights, "Substantial change scope")
	}
	if lineCount > 20 {
		impact += 3
	}
	if sig.HasSecurityFix {
		impact += 5
	}
	if sig.TitleFeature {
		impact += 3
	}
	if sig.TitleFix {
		impact += 4
	}
	if sig.HasTodo {
		impact -= 2
		concerns = append(concerns, "Leaves unfinished TODO/FIXME markers")
	}

	if sig.HasErrorHandling {
		practices += 4
		highlights = append(highlights, "Handles error paths")
	}
	if sig.HasCleanup {
		practices += 3
		highlights = append(highlights, "Cleans up resources")
	}
	if sig.HasHeaders {
		practices += 2
	}
	if sig.HasConstants {
		practices += 2
	}
	if sig.HasStatusCodes {
		practices += 2
	}
	if sig.HasSuppressedCheck {
		practices -= 5
	}
	practices -= sig.DebugLogCount

	score := Score{
		Quality:   clamp(quality),
		Security:  clamp(security),
		Impact:    clamp(impact),
		Practices: clamp(practices),
	}
	total := score.Total()
	pass := total >= PassThreshold && !sig.HasSecrets

	return Assessment{
		Score:      score,
		Total:      total,
		Pass:       pass,
		Reasoning:  buildReasoning(score, total, pass, sig),
		Highlights: highlights,
		Concerns:   concerns,
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > SubScoreMax {
		return SubScoreMax
	}
	return v
}

func buildReasoning(s Score, total int, pass bool, sig Signals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Heuristic rubric: quality=%d/25, security=%d/25, impact=%d/25, practices=%d/25, total=%d/100. ",
		s.Quality, s.Security, s.Impact, s.Practices, total)
	if sig.HasSecrets {
		b.WriteString("Hardcoded secret found; automatic fail. ")
	}
	if pass {
		b.WriteString("Meets the merge bar.")
	} else {
		b.WriteString("Below the merge bar.")
	}
	return b.String()
}
