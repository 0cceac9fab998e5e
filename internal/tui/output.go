package tui

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// Output format values accepted by NewOutput.
const (
	// FormatAuto picks text on a terminal and JSON otherwise.
	FormatAuto = ""
	// FormatText is styled human-readable output.
	FormatText = "text"
	// FormatJSON is one JSON document per message.
	FormatJSON = "json"
)

// Output is how commands report to the user.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error, with its suggestion when it is an ActionableError.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// JSON prints v as JSON.
	JSON(v any) error
	// Spinner shows progress until Stop is called.
	Spinner(ctx context.Context, msg string) Spinner
}

// Spinner is a progress indicator.
type Spinner interface {
	Update(msg string)
	Stop()
}

// NewOutput returns the Output for format. FormatAuto selects text only
// when w is a terminal.
func NewOutput(w io.Writer, format string) Output {
	switch format {
	case FormatJSON:
		return NewJSONOutput(w)
	case FormatText:
		return NewTTYOutput(w)
	default:
		if isTTY(w) {
			return NewTTYOutput(w)
		}
		return NewJSONOutput(w)
	}
}

// isTTY reports whether w is an *os.File attached to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}
