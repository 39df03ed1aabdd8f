// internal/rubric/signals.go
package rubric

import (
	"regexp"
	"strings"
)

// Signals are the pattern detections extracted from a diff. They are computed
// once per submission and shared by the rubric, the pricing function, and the
// risk classifier, so a future static analyzer can replace this extraction
// without touching any of the three consumers.
type Signals struct {
	HasTypes           bool
	HasInterface       bool
	HasClass           bool
	HasExport          bool
	HasErrorHandling   bool
	HasCleanup         bool
	HasHeaders         bool
	HasConstants       bool
	HasStatusCodes     bool
	HasSecrets         bool
	HasInputValidation bool
	HasSecurityFix     bool
	HasSuppressedCheck bool
	HasTodo            bool
	HasWeakTypes       bool
	TitleFeature       bool
	TitleFix           bool
	HighRisk           bool
	CommentCount       int
	DebugLogCount      int
}

var (
	reTypes           = regexp.MustCompile(`:\s*(string|number|boolean|void|Map|Set|Array|Promise|Record)\b`)
	reInterface       = regexp.MustCompile(`interface\s+\w+`)
	reClass           = regexp.MustCompile(`class\s+\w+`)
	reExport          = regexp.MustCompile(`export\s+(function|class|const|interface)`)
	reErrorHandling   = regexp.MustCompile(`throw new Error|\.catch\(|try\s*\{|if\s*\(!`)
	reCleanup         = regexp.MustCompile(`clearInterval|clearTimeout|\.destroy\(|\.close\(|\.terminate\(|\.delete\(`)
	reHeaders         = regexp.MustCompile(`setHeader|X-RateLimit|Content-Type`)
	reConstants       = regexp.MustCompile(`const\s+[A-Z_]{3,}`)
	reComments        = regexp.MustCompile(`//\s*[A-Z][a-z]`)
	reStatusCodes     = regexp.MustCompile(`\.status\(\d{3}\)|res\.json`)
	reSecrets         = regexp.MustCompile(`API_KEY|sk_live|sk_test|password\s*=\s*['"]|SECRET`)
	reInputValidation = regexp.MustCompile(`(?i)sanitize|validate|escape|\.replace\(|pattern|regex|DANGEROUS`)
	reSecurityFix     = regexp.MustCompile(`(?i)XSS|CSRF|injection|vulnerability|sanitize`)
	reDebugLogs       = regexp.MustCompile(`console\.(log|debug|warn)`)
	reSuppressedCheck = regexp.MustCompile(`@ts-ignore`)
	reTodo            = regexp.MustCompile(`TODO|FIXME|HACK|XXX`)
	reWeakTypes       = regexp.MustCompile(`:\s*any\b`)
	reHighRisk        = regexp.MustCompile(`(?i)auth\.|login\.|\.sol\b|contract|security|crypto|keys/`)
)

// ExtractSignals scans a submission title and diff for the structural and
// security patterns the rubric scores on. Pure text matching, no state.
func ExtractSignals(title, diff string) Signals {
	titled := title + diff
	return Signals{
		HasTypes:           reTypes.MatchString(diff),
		HasInterface:       reInterface.MatchString(diff),
		HasClass:           reClass.MatchString(diff),
		HasExport:          reExport.MatchString(diff),
		HasErrorHandling:   reErrorHandling.MatchString(diff),
		HasCleanup:         reCleanup.MatchString(diff),
		HasHeaders:         reHeaders.MatchString(diff),
		HasConstants:       reConstants.MatchString(diff),
		HasStatusCodes:     reStatusCodes.MatchString(diff),
		HasSecrets:         reSecrets.MatchString(diff),
		HasInputValidation: reInputValidation.MatchString(diff),
		HasSecurityFix:     reSecurityFix.MatchString(titled),
		HasSuppressedCheck: reSuppressedCheck.MatchString(diff),
		HasTodo:            reTodo.MatchString(diff),
		HasWeakTypes:       reWeakTypes.MatchString(diff),
		TitleFeature:       strings.HasPrefix(title, "feat:"),
		TitleFix:           strings.HasPrefix(title, "fix:"),
		HighRisk:           reHighRisk.MatchString(titled),
		CommentCount:       len(reComments.FindAllString(diff, -1)),
		DebugLogCount:      len(reDebugLogs.FindAllString(diff, -1)),
	}
}
