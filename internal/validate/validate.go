// Package validate checks inbound game-state and market deltas before they
// reach the versioned store. Issues are aggregated into one Result per delta
// so callers see the full picture; only error-severity issues block storage,
// warnings and infos are persisted as anomalies for later pattern analysis.
package validate

import (
	"fmt"
	"strings"
)

// Severity of a single validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one validation finding against a named field.
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Field, i.Message)
}

// Outcome classifies what the store should do with a validated delta.
type Outcome int

const (
	Stored Outcome = iota
	StoredWithWarnings
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Stored:
		return "stored"
	case StoredWithWarnings:
		return "stored_with_warnings"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result aggregates every issue found in one validation run.
type Result struct {
	Issues []Issue
}

func (r *Result) addf(sev Severity, field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: sev,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errorf records a blocking issue.
func (r *Result) Errorf(field, format string, args ...any) {
	r.addf(SeverityError, field, format, args...)
}

// Warnf records a suspicious but non-blocking issue.
func (r *Result) Warnf(field, format string, args ...any) {
	r.addf(SeverityWarning, field, format, args...)
}

// Infof records an informational observation.
func (r *Result) Infof(field, format string, args ...any) {
	r.addf(SeverityInfo, field, format, args...)
}

// Outcome classifies the run: any error rejects, any warning stores with
// warnings, otherwise plain stored.
func (r *Result) Outcome() Outcome {
	warned := false
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityError:
			return Rejected
		case SeverityWarning:
			warned = true
		}
	}
	if warned {
		return StoredWithWarnings
	}
	return Stored
}

// Errors returns only the blocking issues.
func (r *Result) Errors() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// ValidationError surfaces a rejected delta together with the business key
// and every failed invariant, so a blocked write is never a vague "insert
// failed".
type ValidationError struct {
	Entity      string
	BusinessKey string
	Issues      []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("%s %q rejected: %s", e.Entity, e.BusinessKey, strings.Join(parts, "; "))
}
