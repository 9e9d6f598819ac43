// =============================================================================
// sheetops - Precondition Checks
// =============================================================================
//
// This module checks a job's configuration before any row is processed.
// A missing input, key column or date pair stops the job with a list of
// problems; the engines themselves never fail on row data.
//
// ERROR HANDLING:
//   - Problems are collected, not returned on the first hit
//   - Each problem names the field it concerns
//   - Warnings (e.g. a key column no row carries) are reported but do not
//     stop the job
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// ErrPrecondition is wrapped by every error returned from Check.
var ErrPrecondition = errors.New("precondition failed")

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a single configuration problem.
type ValidationError struct {
	// Severity is SeverityError (stops the job) or SeverityWarning.
	Severity string

	// Field is the configuration field the problem concerns,
	// e.g. "join.left_key" or "date_pairs[1].end_column".
	Field string

	// Rule is the check that failed.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Field, e.Message)
}

// Errors is a list of problems that contains at least one SeverityError.
// It unwraps to ErrPrecondition.
type Errors []*ValidationError

// Error implements the error interface.
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		if v.Severity == SeverityError {
			msgs = append(msgs, v.Field+": "+v.Message)
		}
	}
	return fmt.Sprintf("%s: %s", ErrPrecondition, strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is match ErrPrecondition.
func (e Errors) Unwrap() error { return ErrPrecondition }

// =============================================================================
// JOB INPUT
// =============================================================================

// Job is the subset of a job's configuration the checks need. Tables are
// nil when the input was not loaded.
type Job struct {
	Mode  string
	Left  *types.Table
	Right *types.Table

	Keys         types.JoinKeySpec
	KeyColumn    string
	DatePairs    []types.DatePairSpec
	ComparePairs []types.ComparisonPairSpec
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Check validates job and returns every problem found.
//
// RETURNS:
//   - warnings: problems that do not stop the job.
//   - err: an Errors value wrapping ErrPrecondition, or nil.
func Check(job Job) (warnings []*ValidationError, err error) {
	return split(collect(job, true))
}

// CheckStatic runs only the checks that need no loaded table: the mode and
// its keys, date pairs and comparison pairs. A configuration is checked
// with it before any input is read.
func CheckStatic(job Job) error {
	_, err := split(collect(job, false))
	return err
}

// collect gathers the problems of job. With tables set, missing tables are
// errors and absent columns are warnings.
func collect(job Job, tables bool) []*ValidationError {
	var problems []*ValidationError
	add := func(severity, field, rule, format string, args ...any) {
		problems = append(problems, &ValidationError{
			Severity: severity,
			Field:    field,
			Rule:     rule,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	left, right := job.Left, job.Right
	if !tables {
		left, right = nil, nil
	}

	if tables && left == nil {
		add(SeverityError, "input", "required", "no table loaded")
	}

	switch job.Mode {
	case "calculate":
		if len(job.DatePairs) == 0 {
			add(SeverityError, "date_pairs", "required", "at least one date pair is required")
		}
		for i, p := range job.DatePairs {
			field := fmt.Sprintf("date_pairs[%d]", i)
			if strings.TrimSpace(p.StartColumn) == "" {
				add(SeverityError, field+".start_column", "required", "start column is empty")
			}
			if strings.TrimSpace(p.EndColumn) == "" {
				add(SeverityError, field+".end_column", "required", "end column is empty")
			}
			if left != nil {
				warnMissing(add, left, field+".start_column", p.StartColumn)
				warnMissing(add, left, field+".end_column", p.EndColumn)
			}
		}

	case "group":
		if strings.TrimSpace(job.KeyColumn) == "" {
			add(SeverityError, "key", "required", "no key column selected")
		} else if left != nil {
			warnMissing(add, left, "key", job.KeyColumn)
		}

	case "merge", "compare":
		if tables && right == nil {
			add(SeverityError, "right", "required", "no second table loaded")
		}
		if strings.TrimSpace(job.Keys.LeftKey) == "" {
			add(SeverityError, "join.left_key", "required", "no left key column selected")
		} else if left != nil {
			warnMissing(add, left, "join.left_key", job.Keys.LeftKey)
		}
		if strings.TrimSpace(job.Keys.RightKey) == "" {
			add(SeverityError, "join.right_key", "required", "no right key column selected")
		} else if right != nil {
			warnMissing(add, right, "join.right_key", job.Keys.RightKey)
		}

		if job.Mode == "compare" {
			if len(job.ComparePairs) == 0 {
				add(SeverityError, "compare_pairs", "required", "at least one comparison pair is required")
			}
			for i, p := range job.ComparePairs {
				field := fmt.Sprintf("compare_pairs[%d]", i)
				if strings.TrimSpace(p.LeftColumn) == "" {
					add(SeverityError, field+".left_column", "required", "left column is empty")
				}
				if strings.TrimSpace(p.RightColumn) == "" {
					add(SeverityError, field+".right_column", "required", "right column is empty")
				}
			}
		}

	default:
		add(SeverityError, "mode", "unknown", "unknown mode %q", job.Mode)
	}

	return problems
}

// split separates warnings from fatal problems.
func split(problems []*ValidationError) (warnings []*ValidationError, err error) {
	var fatal Errors
	for _, p := range problems {
		if p.Severity == SeverityError {
			fatal = append(fatal, p)
		} else {
			warnings = append(warnings, p)
		}
	}
	if len(fatal) > 0 {
		return warnings, fatal
	}
	return warnings, nil
}

// warnMissing records a warning when no row of table carries column.
func warnMissing(add func(string, string, string, string, ...any), table *types.Table, field, column string) {
	if column == "" || table.IsEmpty() || table.HasColumn(column) {
		return
	}
	add(SeverityWarning, field, "column_exists", "column %q is not present in any row", column)
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation problems for display or logging.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errs)))

	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
