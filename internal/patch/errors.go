package patch

import "fmt"

// ErrorKind classifies patch errors for retry decisions.
type ErrorKind int

const (
	// ErrSyntax - the diff text is structurally malformed.
	// Fatal: the spec never reaches extraction.
	ErrSyntax ErrorKind = iota

	// ErrDeadline - extraction exceeded its time budget.
	// Fatal: indicates pathological input, not a format problem.
	ErrDeadline

	// ErrNoBlocks - the diff text contained zero parseable blocks.
	// Fatal: indicates a format problem despite passing validation.
	ErrNoBlocks

	// ErrEmptySearch - a block's search text was empty.
	// Per-edit: recorded as a failed report, the batch continues.
	ErrEmptySearch

	// ErrIdenticalContent - a block's search and replace text were identical.
	// Per-edit: recorded as a failed report, the batch continues.
	ErrIdenticalContent

	// ErrNoMatch - no candidate reached the similarity threshold.
	// Per-edit: recorded as a failed report, the batch continues.
	ErrNoMatch
)

// PatchError is an error with a kind, an optional remediation hint, and
// optional structured details for the upstream retry loop.
type PatchError struct {
	Kind    ErrorKind
	Message string
	Hint    string
	Details map[string]any
}

// Error implements the error interface. The hint is folded into the
// message so callers that only surface Error() still show the remediation.
func (e *PatchError) Error() string {
	if e.Hint != "" {
		return e.Message + " (hint: " + e.Hint + ")"
	}
	return e.Message
}

// Fatal reports whether this error aborts the whole apply call.
// Per-edit errors are captured as EditReports instead and never abort.
func (e *PatchError) Fatal() bool {
	switch e.Kind {
	case ErrSyntax, ErrDeadline, ErrNoBlocks:
		return true
	}
	return false
}

// SyntaxError creates a fatal spec syntax error.
func SyntaxError(msg, hint string) *PatchError {
	return &PatchError{Kind: ErrSyntax, Message: msg, Hint: hint}
}

// SyntaxErrorf creates a formatted fatal spec syntax error.
func SyntaxErrorf(hint, format string, args ...any) *PatchError {
	return &PatchError{Kind: ErrSyntax, Message: fmt.Sprintf(format, args...), Hint: hint}
}

// DeadlineError creates a fatal extraction deadline error.
func DeadlineError(msg string) *PatchError {
	return &PatchError{
		Kind:    ErrDeadline,
		Message: msg,
		Hint:    "the diff took too long to parse; split it into smaller blocks and retry",
	}
}

// NoBlocksError creates a fatal zero-blocks error.
func NoBlocksError() *PatchError {
	return &PatchError{
		Kind:    ErrNoBlocks,
		Message: "no valid search/replace blocks found in diff",
		Hint:    "the diff must contain at least one complete block; " + formatHint,
	}
}

// editError creates a per-edit error of the given kind.
func editError(kind ErrorKind, msg, hint string) *PatchError {
	return &PatchError{Kind: kind, Message: msg, Hint: hint}
}
