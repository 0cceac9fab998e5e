// Package logging provides sensitive data filtering for simdriver's logs.
//
// Scripts routinely type credentials into the app under test, and runner
// output echoes them back, so everything written to the log file passes
// through a FilteringWriter first.
package logging

import (
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns match credential formats seen in scripts and runner output.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// typeText payloads in encoded scripts and logged actions
	regexp.MustCompile(`("type"\s*:\s*"typeText"[^}]*?"text"\s*:\s*)"(?:[^"\\]|\\.)*"`),

	// Apple app-specific passwords
	regexp.MustCompile(`\b[a-z]{4}-[a-z]{4}-[a-z]{4}-[a-z]{4}\b`),

	// JSON web tokens
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),

	// Generic secret assignments
	regexp.MustCompile(`(?i)(secret|password|passwd|pwd|token|api[_-]?key)"?\s*[:=]\s*["']?[^\s"',}]{8,}["']?`),

	// Private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

// sensitiveFieldNames are log field names whose values are always redacted.
var sensitiveFieldNames = map[string]struct{}{ //nolint:gochecknoglobals // Package-level lookup
	"password":     {},
	"passwd":       {},
	"secret":       {},
	"token":        {},
	"api_key":      {},
	"apikey":       {},
	"credential":   {},
	"credentials":  {},
	"private_key":  {},
	"access_token": {},
	"typed_text":   {},
	"text":         {},
}

// SensitiveDataHook flags log events whose message looks sensitive.
// zerolog hooks cannot rewrite a message, so real redaction happens in
// FilteringWriter and via SafeValue at call sites.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData reports whether s matches any sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
// typeText payloads keep their key and lose only the typed string.
func FilterSensitiveValue(value string) string {
	result := sensitivePatterns[0].ReplaceAllString(value, `${1}"`+RedactedValue+`"`)
	for _, pattern := range sensitivePatterns[1:] {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName reports whether a field name indicates sensitive data.
// Names match exactly or as an underscore/dash separated word.
func IsSensitiveFieldName(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	if _, ok := sensitiveFieldNames[lower]; ok {
		return true
	}
	for word := range sensitiveFieldNames {
		if containsWordBoundary(lower, word, []string{"_", "-"}) {
			return true
		}
	}
	return false
}

// containsWordBoundary reports whether word appears in name delimited by one
// of seps on at least one side. An exact match is not a boundary match.
func containsWordBoundary(name, word string, seps []string) bool {
	if name == "" || word == "" || name == word {
		return false
	}
	for _, sep := range seps {
		if strings.HasPrefix(name, word+sep) ||
			strings.HasSuffix(name, sep+word) ||
			strings.Contains(name, sep+word+sep) {
			return true
		}
	}
	return false
}

// SafeValue returns value, or [REDACTED] when the field name is sensitive.
//
//	logger.Debug().Str("text", logging.SafeValue("text", action.Text)).Msg("typing")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and redacts sensitive data and the
// user's home directory from everything written through it.
type FilteringWriter struct {
	w    io.Writer
	home string
}

// NewFilteringWriter creates a FilteringWriter around w. Occurrences of the
// current user's home directory are shortened to "~".
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	home, _ := os.UserHomeDir()
	return NewFilteringWriterWithHome(w, home)
}

// NewFilteringWriterWithHome is NewFilteringWriter with an explicit home
// directory. An empty or root home disables path shortening.
func NewFilteringWriterWithHome(w io.Writer, home string) *FilteringWriter {
	home = strings.TrimRight(home, "/")
	return &FilteringWriter{w: w, home: home}
}

// Write filters p and writes it. It reports len(p) on success so callers do
// not see a short write when redaction changes the length.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if fw.home != "" {
		filtered = strings.ReplaceAll(filtered, fw.home+"/", "~/")
	}
	if _, err := fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
