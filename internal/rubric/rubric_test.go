// internal/rubric/rubric_test.go
package rubric

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Signal Extraction Tests
// ==========================

func TestExtractSignals_Patterns(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		diff     string
		validate func(t *testing.T, sig Signals)
	}{
		{
			name:  "typed exported function with interface",
			title: "feat: add session manager",
			diff: `export interface Session { id: string }
export function create(id: string): Session {
  return { id };
}`,
			validate: func(t *testing.T, sig Signals) {
				assert.True(t, sig.HasTypes)
				assert.True(t, sig.HasInterface)
				assert.True(t, sig.HasExport)
				assert.True(t, sig.TitleFeature)
				assert.False(t, sig.TitleFix)
				assert.False(t, sig.HasClass)
				assert.False(t, sig.HasSecrets)
			},
		},
		{
			name:  "hardcoded secret",
			title: "chore: config",
			diff:  `const API_KEY = "sk_live_abc123"`,
			validate: func(t *testing.T, sig Signals) {
				assert.True(t, sig.HasSecrets)
			},
		},
		{
			name:  "password assignment counts as secret",
			title: "fix: login",
			diff:  `const password = 'hunter2'`,
			validate: func(t *testing.T, sig Signals) {
				assert.True(t, sig.HasSecrets)
			},
		},
		{
			name:  "security fix detected from title alone",
			title: "fix: XSS in comment renderer",
			diff:  `el.textContent = input;`,
			validate: func(t *testing.T, sig Signals) {
				assert.True(t, sig.HasSecurityFix)
				assert.True(t, sig.HighRisk)
				assert.True(t, sig.TitleFix)
			},
		},
		{
			name:  "high risk path in diff",
			title: "refactor: helpers",
			diff:  `import { verify } from './auth.service'`,
			validate: func(t *testing.T, sig Signals) {
				assert.True(t, sig.HighRisk)
			},
		},
		{
			name:  "debug logs counted",
			title: "wip",
			diff: `console.log(1)
console.log(2)
console.debug("x")
console.warn("y")`,
			validate: func(t *testing.T, sig Signals) {
				assert.Equal(t, 4, sig.DebugLogCount)
			},
		},
		{
			name:  "cleanup and error handling",
			title: "fix: leak",
			diff: `try {
  clearInterval(timer);
} catch (e) {
  throw new Error("boom");
}`,
			validate: func(t *testing.T, sig Signals) {
				assert.True(t, sig.HasCleanup)
				assert.True(t, sig.HasErrorHandling)
			},
		},
		{
			name:  "suppressed checks and weak types",
			title: "chore",
			diff: `// @ts-ignore
const data: any = load();`,
			validate: func(t *testing.T, sig Signals) {
				assert.True(t, sig.HasSuppressedCheck)
				assert.True(t, sig.HasWeakTypes)
			},
		},
		{
			name:  "benign diff has no risk flags",
			title: "docs: update readme",
			diff:  "just prose changes",
			validate: func(t *testing.T, sig Signals) {
				assert.False(t, sig.HighRisk)
				assert.False(t, sig.HasSecrets)
				assert.False(t, sig.HasSecurityFix)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, ExtractSignals(tt.title, tt.diff))
		})
	}
}

// ==========================
// Rubric Scoring Tests
// ==========================

func TestEvaluate_BaselineScores(t *testing.T) {
	// No signals at all: the four baselines survive untouched.
	result := Evaluate(Signals{}, 5)

	assert.Equal(t, 12, result.Score.Quality)
	assert.Equal(t, 15, result.Score.Security)
	assert.Equal(t, 10, result.Score.Impact)
	assert.Equal(t, 12, result.Score.Practices)
	assert.Equal(t, 49, result.Total)
	assert.False(t, result.Pass)
}

func TestEvaluate_SecretZeroesSecurity(t *testing.T) {
	// Leaked key plus heavy debug logging: security resets to zero and the
	// -3 log penalty clamps right back to the floor.
	sig := Signals{
		HasSecrets:       true,
		HasTypes:         true,
		HasInterface:     true,
		HasErrorHandling: true,
		HasCleanup:       true,
		DebugLogCount:    4,
	}
	result := Evaluate(sig, 100)

	assert.Equal(t, 0, result.Score.Security)
	assert.False(t, result.Pass, "secret must force a fail even over the threshold")
	assert.Contains(t, strings.Join(result.Concerns, " "), "hardcoded secret")
}

func TestEvaluate_SecretResetsBeforeBonuses(t *testing.T) {
	// Security bonuses apply after the reset, so they rebuild from zero,
	// not from the baseline. The verdict override fails the submission
	// regardless.
	sig := Signals{
		HasSecrets:         true,
		HasInputValidation: true,
		HasSecurityFix:     true,
	}
	result := Evaluate(sig, 10)

	assert.Equal(t, 10, result.Score.Security)
	assert.False(t, result.Pass)
}

func TestEvaluate_SubScoresClamped(t *testing.T) {
	tests := []struct {
		name      string
		sig       Signals
		lineCount int
		check     func(t *testing.T, a Assessment)
	}{
		{
			name: "quality floor at zero",
			sig: Signals{
				HasSuppressedCheck: true,
				HasWeakTypes:       true,
				DebugLogCount:      10,
			},
			lineCount: 5,
			check: func(t *testing.T, a Assessment) {
				assert.Equal(t, 0, a.Score.Quality)
				assert.Equal(t, 0, a.Score.Practices)
			},
		},
		{
			name: "security ceiling at 25",
			sig: Signals{
				HasInputValidation: true,
				HasSecurityFix:     true,
			},
			lineCount: 5,
			check: func(t *testing.T, a Assessment) {
				assert.Equal(t, 25, a.Score.Security)
			},
		},
		{
			name: "quality ceiling at 25",
			sig: Signals{
				HasTypes:     true,
				HasInterface: true,
				HasClass:     true,
				HasExport:    true,
				CommentCount: 5,
			},
			lineCount: 5,
			check: func(t *testing.T, a Assessment) {
				// 12+4+3+2+1+2 = 24, under the cap
				assert.Equal(t, 24, a.Score.Quality)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Evaluate(tt.sig, tt.lineCount))
		})
	}
}

func TestEvaluate_ImpactScaling(t *testing.T) {
	small := Evaluate(Signals{}, 10)
	medium := Evaluate(Signals{}, 25)
	large := Evaluate(Signals{}, 60)

	assert.Equal(t, 10, small.Score.Impact)
	assert.Equal(t, 13, medium.Score.Impact)
	// Both line-count bonuses stack on a large change.
	assert.Equal(t, 18, large.Score.Impact)
}

func TestEvaluate_ImpactTitlePrefixes(t *testing.T) {
	feature := Evaluate(Signals{TitleFeature: true}, 10)
	fix := Evaluate(Signals{TitleFix: true}, 10)

	assert.Equal(t, 13, feature.Score.Impact)
	assert.Equal(t, 14, fix.Score.Impact)
}

func TestEvaluate_PassAtThreshold(t *testing.T) {
	// Typed interface + validation + error handling over 40 lines clears 60.
	sig := Signals{
		HasTypes:           true,
		HasInterface:       true,
		HasInputValidation: true,
		HasErrorHandling:   true,
	}
	result := Evaluate(sig, 50)

	assert.GreaterOrEqual(t, result.Total, PassThreshold)
	assert.True(t, result.Pass)
	assert.NotEmpty(t, result.Highlights)
	assert.Contains(t, result.Reasoning, "Meets the merge bar")
}

func TestEvaluate_TotalMatchesSubScores(t *testing.T) {
	sig := ExtractSignals("fix: sanitize input for XSS", `export function clean(s: string): string {
  try {
    return sanitize(s);
  } catch (e) {
    throw new Error("bad input");
  }
}`)
	result := Evaluate(sig, 30)

	assert.Equal(t, result.Score.Total(), result.Total)
	assert.GreaterOrEqual(t, result.Total, 0)
	assert.LessOrEqual(t, result.Total, 100)
}
