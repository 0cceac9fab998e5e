package tui

import (
	"errors"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// ActionableError is an error with a next step for the user.
//
//	err := NewActionableError("no booted simulator", "Run: simdriver simulators boot <udid>")
//	out.Error(err)
//	// ✗ no booted simulator
//	//   ▸ Try: simdriver simulators boot <udid>
type ActionableError struct {
	// Message is the primary error message.
	Message string

	// Suggestion starts with a verb, e.g. "Run: simdriver doctor".
	Suggestion string

	// Context is appended to the message in parentheses when set.
	Context string

	err error
}

// NewActionableError creates an ActionableError.
func NewActionableError(msg, suggestion string) *ActionableError {
	return &ActionableError{Message: msg, Suggestion: suggestion}
}

// Error returns the message, with context in parentheses when set.
func (e *ActionableError) Error() string {
	if e.Context != "" {
		return e.Message + " (" + e.Context + ")"
	}
	return e.Message
}

// Unwrap returns the error the suggestion was derived from, if any.
func (e *ActionableError) Unwrap() error {
	return e.err
}

// WithContext sets Context and returns e.
func (e *ActionableError) WithContext(ctx string) *ActionableError {
	e.Context = ctx
	return e
}

// SuggestionForError returns the suggested next step for err, or "".
func SuggestionForError(err error) string {
	_, action := simerrors.Actionable(err)
	return action
}

// WithSuggestion wraps err in an ActionableError carrying its suggestion.
// The original error stays reachable through errors.Is.
func WithSuggestion(err error) *ActionableError {
	if err == nil {
		return nil
	}
	var ae *ActionableError
	if errors.As(err, &ae) {
		return ae
	}
	return &ActionableError{
		Message:    err.Error(),
		Suggestion: SuggestionForError(err),
		err:        err,
	}
}
