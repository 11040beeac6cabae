package engine

import (
	"fmt"
	"strings"

	"go.starlark.net/syntax"

	"github.com/isdmx/databox/policy"
)

// scriptFilename is the name scripts are reported under in syntax errors
// and fault backtraces.
const scriptFilename = "script.star"

// fileOptions enables the imperative Starlark dialect scripts are written
// in: top-level control flow, while loops, set literals, reassignment, and
// recursion. The same options are used for parsing and execution so the
// validator accepts exactly what the harness runs.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Violation records one forbidden pattern found in a script, with every
// 1-indexed line it occurs on.
type Violation struct {
	Pattern   string `json:"pattern"`
	Rationale string `json:"rationale"`
	Lines     []int  `json:"lines"`
}

// ValidationResult is the outcome of static validation. OK means the script
// may proceed to execution; otherwise Kind and Message describe the first
// failure and, for security violations, Violations carries the full match
// list.
type ValidationResult struct {
	OK         bool
	Kind       ErrorKind
	Message    string
	Violations []Violation
}

// Validator rejects scripts before execution based on size, syntax, and the
// policy store's forbidden patterns. Validation is a pure function of the
// script text: the same input always yields the same result.
type Validator struct {
	maxChars int
	store    *policy.Store
}

// NewValidator builds a Validator over the given policy store. maxChars
// caps the accepted script length in characters.
func NewValidator(maxChars int, store *policy.Store) *Validator {
	return &Validator{maxChars: maxChars, store: store}
}

// Validate checks the script. Checks run in a fixed order: emptiness,
// length, syntax, then the pattern scan. Syntax must come first among the
// content checks because a malformed script cannot be meaningfully
// substring-matched for intent.
func (v *Validator) Validate(script string) ValidationResult {
	if strings.TrimSpace(script) == "" {
		return ValidationResult{
			Kind:    KindEmptyInput,
			Message: "script cannot be empty",
		}
	}

	if len(script) > v.maxChars {
		return ValidationResult{
			Kind:    KindTooLarge,
			Message: fmt.Sprintf("script length %d exceeds maximum of %d characters", len(script), v.maxChars),
		}
	}

	if _, err := fileOptions.Parse(scriptFilename, script, 0); err != nil {
		return ValidationResult{
			Kind:    KindSyntaxError,
			Message: fmt.Sprintf("syntax error in script: %v", err),
		}
	}

	if violations := v.scan(script); len(violations) > 0 {
		return ValidationResult{
			Kind:       KindSecurityViolation,
			Message:    fmt.Sprintf("forbidden operation detected: %s", violations[0].Pattern),
			Violations: violations,
		}
	}

	return ValidationResult{OK: true}
}

// scan finds every policy rule whose pattern occurs as a literal substring
// of the script, recording all 1-indexed line numbers per rule.
func (v *Validator) scan(script string) []Violation {
	lines := strings.Split(script, "\n")

	var violations []Violation
	for _, rule := range v.store.Rules() {
		if !strings.Contains(script, rule.Pattern) {
			continue
		}

		var hits []int
		for i, line := range lines {
			if strings.Contains(line, rule.Pattern) {
				hits = append(hits, i+1)
			}
		}
		violations = append(violations, Violation{
			Pattern:   rule.Pattern,
			Rationale: rule.Rationale,
			Lines:     hits,
		})
	}
	return violations
}
