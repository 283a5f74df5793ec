package include

import (
	"regexp"
	"strings"

	"github.com/benjaminschreck/go-include/pkg/include/scan"
)

// ValidationResult lists the capabilities a save would need but the caller
// lacks.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
}

// Err returns the issues as a *ValidationError, or nil when valid.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	return &ValidationError{Issues: r.Issues}
}

type validator struct {
	includes     *scan.Scanner
	expressions  *scan.Scanner
	executeStart *regexp.Regexp
}

func newValidator(names []string) *validator {
	v := &validator{
		includes:    scan.NewScanner(names, scan.DirectiveCall),
		expressions: scan.NewScanner(nil, scan.TemplateExpr),
	}
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	if len(quoted) > 0 {
		v.executeStart = regexp.MustCompile(`\{\{\{\s*\n?\s*#!(` + strings.Join(quoted, "|") + `)\b`)
	}
	return v
}

func (v *validator) validate(caller Caller, text string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if _, ok := v.includes.Next(text, 0); ok && !caller.can(CapIncludeCreate) {
		result.Issues = append(result.Issues, ValidationIssue{
			Capability: CapIncludeCreate,
			Message:    CapIncludeCreate + " denied.",
		})
	}

	if v.usesTemplates(text) && !caller.can(CapTemplateCreate) {
		result.Issues = append(result.Issues, ValidationIssue{
			Capability: CapTemplateCreate,
			Message:    CapTemplateCreate + " denied.",
		})
	}

	result.Valid = len(result.Issues) == 0
	return result
}

func (v *validator) usesTemplates(text string) bool {
	if v.executeStart != nil && v.executeStart.MatchString(text) {
		return true
	}
	_, ok := v.expressions.Next(text, 0)
	return ok
}
