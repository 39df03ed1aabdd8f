// internal/evaluator/prompt.go
package evaluator

import (
	"fmt"
	"strings"

	"repobounty/internal/models"
)

const maxDiffChars = 12000

// buildPrompt renders the submission into the evaluation instruction both
// remote tiers share. The reply contract matches the normalizer's schema.
func buildPrompt(sub *models.Submission, maxPayout float64) string {
	diff := sub.Diff
	if len(diff) > maxDiffChars {
		diff = diff[:maxDiffChars] + "\n... [diff truncated]"
	}

	var parts []string
	parts = append(parts, "You are a strict code reviewer for an open-source bounty program.")
	parts = append(parts, "Score the pull request on four dimensions, each 0-25: code quality, security, impact, best practices.")
	parts = append(parts, "The verdict is PASS only when the total is 60 or higher AND no hardcoded secret appears in the diff.")
	parts = append(parts, fmt.Sprintf("Suggest a USDC payout between 0 and %.2f proportional to the value of the change.", maxPayout))
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Title: %s", sub.Title))
	parts = append(parts, fmt.Sprintf("Author: %s", sub.Author))
	parts = append(parts, fmt.Sprintf("Repository: %s", sub.Repo))
	parts = append(parts, fmt.Sprintf("Files changed: %d, +%d/-%d lines", sub.FilesChanged, sub.Additions, sub.Deletions))
	parts = append(parts, "")
	parts = append(parts, "Diff:")
	parts = append(parts, diff)
	parts = append(parts, "")
	parts = append(parts, `Reply with ONLY a JSON object: {"verdict":"PASS|FAIL","score":0-100,"reasoning":"...","highlights":["..."],"concerns":["..."],"suggested_payout":0.0,"pricing_rationale":"...","requires_security_audit":false}`)

	return strings.Join(parts, "\n")
}
