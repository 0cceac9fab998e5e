package script

import (
	"fmt"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// Kinds of value a DecodeError can refer to.
const (
	KindScript = "script"
	KindAction = "action"
	KindTarget = "target"
)

// DecodeError reports why a script, action, or target could not be decoded.
// It always matches ErrScriptMalformed with errors.Is.
type DecodeError struct {
	// Kind is one of KindScript, KindAction, KindTarget.
	Kind string

	// Field is the offending wire field, usually "type".
	Field string

	// Value is the offending discriminator. For a missing field it is the
	// discriminator of the value that required it.
	Value string

	// Missing is set when Field was absent rather than invalid.
	Missing bool

	// Err is the underlying syntax error, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("malformed %s: %v", e.Kind, e.Err)
	case e.Missing && e.Value == "":
		return fmt.Sprintf("malformed %s: missing required field %q", e.Kind, e.Field)
	case e.Missing:
		return fmt.Sprintf("malformed %s %q: missing required field %q", e.Kind, e.Value, e.Field)
	case e.Value == "":
		return fmt.Sprintf("malformed %s: missing %q", e.Kind, e.Field)
	default:
		return fmt.Sprintf("malformed %s: unknown %s %q", e.Kind, e.Field, e.Value)
	}
}

// Is reports whether target is ErrScriptMalformed.
func (e *DecodeError) Is(target error) bool {
	return target == simerrors.ErrScriptMalformed
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
